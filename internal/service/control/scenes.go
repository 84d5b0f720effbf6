package control

import (
	"context"
	"fmt"

	"github.com/oshokin/obs-streamdeck-ctl/internal/logger"
	"github.com/oshokin/obs-streamdeck-ctl/internal/obsws"
	"github.com/oshokin/obs-streamdeck-ctl/internal/service/common"
)

// Scene switches to the scene at a 1-based position from the top of the scene list
// and returns its name.
func Scene(ctx context.Context, env *Env, position int) (string, error) {
	ctx = logger.WithName(ctx, "scene")

	var name string

	err := common.WithCompositor(ctx, env.Dial, func(compositor common.Compositor) error {
		list, err := compositor.GetSceneList(ctx)
		if err != nil {
			return fmt.Errorf("get scene list: %w", err)
		}

		scene, err := list.SceneAt(position)
		if err != nil {
			return err
		}

		if err = compositor.SetCurrentScene(ctx, scene.Name); err != nil {
			return fmt.Errorf("set current scene: %w", err)
		}

		name = scene.Name

		return nil
	})
	if err != nil {
		return "", err
	}

	logger.InfoKV(ctx, "Scene switched", "position", position, "scene", name)

	return name, nil
}

// Scenes lists the compositor's scenes.
func Scenes(ctx context.Context, env *Env) (*obsws.SceneList, error) {
	var list *obsws.SceneList

	err := common.WithCompositor(ctx, env.Dial, func(compositor common.Compositor) error {
		var err error

		list, err = compositor.GetSceneList(ctx)

		return err
	})

	return list, err
}

// Sources lists every source known to the compositor.
func Sources(ctx context.Context, env *Env) ([]obsws.SourceInfo, error) {
	var sources []obsws.SourceInfo

	err := common.WithCompositor(ctx, env.Dial, func(compositor common.Compositor) error {
		var err error

		sources, err = compositor.GetSourcesList(ctx)

		return err
	})

	return sources, err
}
