package cli

import "github.com/spf13/cobra"

// HookFunc builds one top-level command. env is populated before any
// command runs.
type HookFunc func(env *Env) *cobra.Command

// Registered holds the registered command hooks.
var Registered map[string]HookFunc

func Register(name string, f HookFunc) {
	if Registered == nil {
		Registered = make(map[string]HookFunc)
	}
	Registered[name] = f
}
