package main

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/recera/mindcloud/internal/config"
	"github.com/recera/mindcloud/pkg/graph"
	"github.com/recera/mindcloud/pkg/loader"
	"github.com/recera/mindcloud/pkg/mindcloud"
)

const configKey = "mindcloud_config_key"

// bind marks a flag as overriding a config key. Several commands may mark
// flags for the same key; only the running command's flags are bound.
func bind(fs *pflag.FlagSet, name, key string) {
	if err := fs.SetAnnotation(name, configKey, []string{key}); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", name, err))
	}
}

// bindFlags binds every marked flag of the running command, so an explicit
// flag beats the config file and the environment.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		keys := f.Annotations[configKey]
		if len(keys) == 0 || err != nil {
			return
		}
		err = v.BindPFlag(keys[0], f)
	})
	return err
}

// fileFetcher serves a payload from disk.
type fileFetcher string

func (f fileFetcher) FetchGraph(context.Context) (*graph.Payload, error) {
	return graph.ReadPayloadFile(string(f))
}

// source picks where the payload comes from: the content API when url is
// set, the configured payload file otherwise.
func source(cfg *config.Config, url string, opts ...loader.Option) (mindcloud.Fetcher, *loader.Client) {
	if url == "" {
		return fileFetcher(cfg.Data.PayloadFile), nil
	}
	opts = append([]loader.Option{
		loader.WithTimeout(cfg.Client.Timeout),
		loader.WithViewRate(cfg.Client.ViewRate, cfg.Client.ViewBurst),
	}, opts...)
	c := loader.New(url, opts...)
	return c, c
}

// taxonomy loads the configured taxonomy, or the built-in one.
func taxonomy(cfg *config.Config) (*graph.Taxonomy, error) {
	if cfg.Data.TaxonomyFile == "" {
		return graph.DefaultTaxonomy(), nil
	}
	return graph.LoadTaxonomy(cfg.Data.TaxonomyFile)
}
