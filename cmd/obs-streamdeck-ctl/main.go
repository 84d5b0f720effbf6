package main

import "github.com/oshokin/obs-streamdeck-ctl/cmd/obs-streamdeck-ctl/cmd"

func main() {
	cmd.Execute()
}
