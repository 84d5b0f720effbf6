// Package control implements the control surface buttons: stream start and
// stop, the live safety and panic buttons, audio mutes and scene switching.
//
// Each button is one batch unit of work. It opens the connections it needs,
// does its job and closes them again.
package control
