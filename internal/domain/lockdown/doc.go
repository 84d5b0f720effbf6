// Package lockdown contains the chat safety convergence logic.
//
// Policy describes the target lockdown, RoomState is one observed ROOMSTATE
// snapshot and Plan turns the pair into the minimal list of chat commands.
// Nothing here talks to the network.
package lockdown
