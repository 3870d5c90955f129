// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// export_cmd.go - transcript export command handler.
//
// Commands:
//   parley export                 Export the latest conversation (Markdown)
//   parley export ID              Export one conversation
//   parley export --format json   Export as JSON instead
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jeranaias/parley/internal/export"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/storage"
)

// HandleExport writes a stored conversation to an export file.
func HandleExport(args *Args, store *storage.Store) error {
	format := "md"
	var id string
	for i := 0; i < len(args.Raw); i++ {
		arg := args.Raw[i]
		switch {
		case arg == "--format":
			if i+1 >= len(args.Raw) {
				return fmt.Errorf("--format requires a value")
			}
			i++
			format = args.Raw[i]
		case strings.HasPrefix(arg, "--format="):
			format = strings.TrimPrefix(arg, "--format=")
		case !strings.HasPrefix(arg, "-"):
			id = arg
		}
	}

	var conv *model.Conversation
	var err error
	if id == "" {
		conv, err = store.Latest()
	} else {
		conv, err = store.Load(id)
	}
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no conversation to export")
		}
		return err
	}

	var path string
	switch format {
	case "md", "markdown":
		path, err = export.Markdown(conv, nil)
	case "json":
		path, err = export.JSON(conv, nil)
	default:
		return fmt.Errorf("unknown format %q (use md or json)", format)
	}
	if err != nil {
		return err
	}

	fmt.Printf("exported to %s\n", path)
	return nil
}
