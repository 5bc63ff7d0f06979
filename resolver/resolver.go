// Package resolver manages the metadata resolvers that turn video ids and
// search queries into playable videos with candidate streams.
package resolver

import (
	"path/filepath"

	"github.com/rickykresslein/yattee/filesystem"
	"github.com/rickykresslein/yattee/resolver/custom"
	"github.com/rickykresslein/yattee/util"
	"github.com/rickykresslein/yattee/video"
	"github.com/rickykresslein/yattee/where"
)

// Source resolves metadata and streams from an external video service.
type Source interface {
	// Name returns the resolver display name.
	Name() string
	// ID returns the canonical resolver identifier.
	ID() string

	// Search returns videos matching a query, metadata only.
	Search(query string) ([]*video.Video, error)
	// Resolve returns full metadata for a video id, related ids and
	// candidate streams included.
	Resolve(videoID string) (*video.Video, error)
	// StreamsOf repopulates the candidate streams of a video.
	StreamsOf(v *video.Video) ([]*video.Stream, error)
}

// Resolver describes a registered resolver and how to instantiate it.
type Resolver struct {
	ID           string
	Name         string
	IsCustom     bool
	CreateSource func() (Source, error)
}

func (r *Resolver) String() string {
	return r.Name
}

// Builtins returns built-in resolvers. There are none; every resolver is a
// user-supplied Lua script.
func Builtins() []*Resolver {
	return []*Resolver{}
}

// Customs returns all available Lua resolvers.
func Customs() []*Resolver {
	resolvers, _ := CustomResolvers()
	return resolvers
}

// All returns every registered resolver.
func All() []*Resolver {
	return append(Builtins(), Customs()...)
}

// Get finds a resolver by name.
func Get(name string) (*Resolver, bool) {
	for _, r := range All() {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// CustomResolvers scans the resolver scripts directory for Lua resolvers.
func CustomResolvers() ([]*Resolver, error) {
	files, err := filesystem.API().ReadDir(where.Resolvers())
	if err != nil {
		return nil, err
	}

	var resolvers []*Resolver
	for _, f := range files {
		if filepath.Ext(f.Name()) != ".lua" {
			continue
		}

		if f.Name() == "common.lua" {
			continue
		}

		path := filepath.Join(where.Resolvers(), f.Name())
		name := util.FileStem(f.Name())

		resolvers = append(resolvers, &Resolver{
			ID:       custom.IDfromName(name),
			Name:     name,
			IsCustom: true,
			CreateSource: func() (Source, error) {
				return custom.LoadSource(path)
			},
		})
	}

	return resolvers, nil
}
