// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - preference management command handlers.
//
// Commands:
//   parley config list
//   parley config get KEY
//   parley config set KEY VALUE
//   parley config reset
package cli

import (
	"fmt"
	"sort"

	"github.com/jeranaias/parley/internal/settings"
)

// HandleConfig dispatches the config subcommands against the store.
func HandleConfig(args *Args, store *settings.Store) error {
	switch args.Subcommand {
	case "", "list", "show":
		return configList(store)
	case "get":
		return configGet(store, args.ConfigKey)
	case "set":
		return configSet(store, args.ConfigKey, args.ConfigVal)
	case "reset":
		return configReset(store)
	default:
		return fmt.Errorf("unknown config subcommand %q (try list, get, set, reset)", args.Subcommand)
	}
}

func configList(store *settings.Store) error {
	values := store.All()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Printf("%-16s %v\n", k, values[k])
	}
	return nil
}

func configGet(store *settings.Store, key string) error {
	if key == "" {
		return fmt.Errorf("usage: parley config get KEY")
	}
	value, err := store.Get(key)
	if err != nil {
		return err
	}
	fmt.Printf("%v\n", value)
	return nil
}

func configSet(store *settings.Store, key, value string) error {
	if key == "" || value == "" {
		return fmt.Errorf("usage: parley config set KEY VALUE")
	}
	if err := store.SetFromString(key, value); err != nil {
		return err
	}
	newValue, _ := store.Get(key)
	fmt.Printf("%s = %v\n", key, newValue)
	return nil
}

func configReset(store *settings.Store) error {
	store.Reset()
	fmt.Println("preferences restored to defaults")
	return nil
}
