// Package main is the entry point for the questbox sandbox server.
//
// questbox runs short Python snippets written by students against a small
// game API (move_to, collect_item, open_door, show_message) inside an
// isolated process, and reports the resulting game action.
//
// Commands:
//
//	questbox serve                      start the MCP (stdio/http) or REST server
//	questbox run game.py --context k=v  execute one file and print the outcome
//	questbox check game.py              run the static validator only
//
// The serve command wires its components with Uber's fx framework, logs with
// zap, and reads configuration through viper.
package main
