// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/pdiddy/cddprep/pkg/types"
)

// setDefaults registers every config key so environment variables and the
// config file can override it.
func setDefaults(v *viper.Viper) {
	d := types.DefaultConfig()
	v.SetDefault("visualize.enabled", d.Visualize.Enabled)
	v.SetDefault("visualize.backend", string(d.Visualize.Backend))
	v.SetDefault("visualize.images_dir", d.Visualize.ImagesDir)
	v.SetDefault("visualize.width", d.Visualize.Width)
	v.SetDefault("visualize.height", d.Visualize.Height)
	v.SetDefault("visualize.container_image", d.Visualize.ContainerImage)
	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("publish.driver", string(d.Publish.Driver))
	v.SetDefault("publish.prefix", d.Publish.Prefix)
	v.SetDefault("publish.root", d.Publish.Root)
	v.SetDefault("publish.bucket", d.Publish.Bucket)
	v.SetDefault("publish.region", d.Publish.Region)
	v.SetDefault("publish.endpoint", d.Publish.Endpoint)
	v.SetDefault("publish.path_style", d.Publish.PathStyle)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.dir", d.History.Dir)
	v.SetDefault("log.level", d.Log.Level)
}

// loadConfig decodes the merged settings held by v.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("reading configuration: %w", err)
	}
	switch cfg.Visualize.Backend {
	case types.BackendBuiltin, types.BackendContainer:
	default:
		return types.Config{}, fmt.Errorf("visualize.backend must be %s or %s, got %q",
			types.BackendBuiltin, types.BackendContainer, cfg.Visualize.Backend)
	}
	return cfg, nil
}
