package artifact

import (
	"strings"

	"github.com/veranemoloko/mc-fetch/internal/config"
)

// Canonical URL prefixes of the authoritative hosts.
const (
	CanonicalLibraries = "https://libraries.minecraft.net/"
	CanonicalAssets    = "https://resources.download.minecraft.net/"
)

var canonicalMeta = []string{
	"https://piston-meta.mojang.com/",
	"https://piston-data.mojang.com/",
	"https://launchermeta.mojang.com/",
	"https://launcher.mojang.com/",
}

type prefixPair struct {
	from string
	to   string
}

// Rewriter maps canonical URLs onto a mirror. The zero value is the identity.
type Rewriter struct {
	pairs      []prefixPair
	assetsBase string
}

// NewRewriter builds the rewriter for a mirror. An authoritative source is left untouched.
func NewRewriter(m config.Mirror, authoritative bool) *Rewriter {
	r := &Rewriter{assetsBase: CanonicalAssets}
	if authoritative {
		return r
	}
	r.assetsBase = ensureSlash(m.Assets)
	r.pairs = append(r.pairs,
		prefixPair{from: CanonicalLibraries, to: ensureSlash(m.Libraries)},
		prefixPair{from: CanonicalAssets, to: r.assetsBase},
	)
	if m.Meta != "" {
		for _, p := range canonicalMeta {
			r.pairs = append(r.pairs, prefixPair{from: p, to: ensureSlash(m.Meta)})
		}
	}
	return r
}

// Rewrite returns url with its canonical prefix replaced by the mirror's.
func (r *Rewriter) Rewrite(url string) string {
	if r == nil {
		return url
	}
	for _, p := range r.pairs {
		if strings.HasPrefix(url, p.from) {
			return p.to + strings.TrimPrefix(url, p.from)
		}
	}
	return url
}

// AssetsBase is the URL prefix asset objects are fetched from.
func (r *Rewriter) AssetsBase() string {
	if r == nil || r.assetsBase == "" {
		return CanonicalAssets
	}
	return r.assetsBase
}

func ensureSlash(s string) string {
	if s == "" || strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}
