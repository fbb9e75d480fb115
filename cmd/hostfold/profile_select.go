package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hostfold/internal/hostprofile"
	"hostfold/internal/regcache"
	"hostfold/internal/registry"
)

const nativeProfile = "go"

// resolveProfile reads --profile-file, or --profile when no file is given.
func resolveProfile(cmd *cobra.Command) (hostprofile.Profile, error) {
	root := cmd.Root()
	file, err := root.PersistentFlags().GetString("profile-file")
	if err != nil {
		return hostprofile.Profile{}, fmt.Errorf("failed to get profile-file flag: %w", err)
	}
	if file != "" {
		return hostprofile.Load(file)
	}
	name, err := root.PersistentFlags().GetString("profile")
	if err != nil {
		return hostprofile.Profile{}, fmt.Errorf("failed to get profile flag: %w", err)
	}
	return profileByName(name)
}

func profileByName(name string) (hostprofile.Profile, error) {
	if name == "" || name == nativeProfile {
		return hostprofile.Native(), nil
	}
	return hostprofile.Lookup(name)
}

// openCache returns the user cache when --cache is set, nil otherwise.
func openCache(cmd *cobra.Command) (*regcache.Cache, error) {
	use, err := cmd.Root().PersistentFlags().GetBool("cache")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache flag: %w", err)
	}
	if !use {
		return nil, nil
	}
	return regcache.Open("hostfold")
}

// decide builds the registry for p, through the cache when one is open.
func decide(p hostprofile.Profile, cache *regcache.Cache) (reg *registry.Registry, hit bool, err error) {
	if err := p.Validate(); err != nil {
		return nil, false, err
	}
	if cache == nil {
		return registry.New(p), false, nil
	}
	return cache.Load(p)
}
