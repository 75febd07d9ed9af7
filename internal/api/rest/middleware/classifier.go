package middleware

import (
	"strings"

	"github.com/caseforge/caseforge/pkg/trie"
)

// Access is the result of classifying a request path.
type Access int

const (
	AccessProtected Access = iota
	AccessPublic
)

func (a Access) String() string {
	if a == AccessPublic {
		return "public"
	}
	return "protected"
}

// DefaultPublicPaths are the storefront routes reachable without a session.
// The configurator flow stays public so a design can be built before login.
var DefaultPublicPaths = []string{
	"/",
	"/api/auth/login",
	"/api/auth/register",
	"/api/auth/logout",
	"/api/auth/callback",
	"/auth-callback",
	"/configure/upload",
	"/configure/design",
	"/configure/preview",
	"/api/uploads",
	"/api/configurations",
	"/api/webhooks",
	"/diagnostics",
}

// DefaultPublicPrefixes are route subtrees that are public in their entirety:
// auth endpoints, upload intake, and payment webhooks.
var DefaultPublicPrefixes = []string{
	"/api/auth",
	"/api/uploads",
	"/api/webhooks",
}

// Classifier decides per request path whether a session is required. It
// cannot fail: every path is exactly one of Public or Protected, and any
// matching rule wins for Public.
type Classifier struct {
	publicPaths []string
	prefixes    *trie.Node[string]
}

// NewClassifier builds a classifier from a public-path set and a set of
// always-public path prefixes.
func NewClassifier(publicPaths, publicPrefixes []string) *Classifier {
	prefixes := trie.New[string]()
	for _, p := range publicPrefixes {
		segments := splitPath(p)
		if len(segments) == 0 {
			// Rooting the trie would make every path public.
			continue
		}
		// Duplicates carry no extra information.
		_ = prefixes.Insert(segments, p)
	}

	return &Classifier{
		publicPaths: publicPaths,
		prefixes:    prefixes,
	}
}

// NewDefaultClassifier builds a classifier over the storefront's route surface.
func NewDefaultClassifier() *Classifier {
	return NewClassifier(DefaultPublicPaths, DefaultPublicPrefixes)
}

// Classify returns AccessPublic when any rule matches and AccessProtected
// otherwise.
func (c *Classifier) Classify(path string) Access {
	// A public path covers itself, its subtree, and itself with a query
	// string appended.
	for _, p := range c.publicPaths {
		if path == p || strings.HasPrefix(path, p+"/") || strings.HasPrefix(path, p+"?") {
			return AccessPublic
		}
	}

	bare, _, _ := strings.Cut(path, "?")
	if _, ok := c.prefixes.SearchPrefix(splitPath(bare)); ok {
		return AccessPublic
	}

	return AccessProtected
}

func splitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
}
