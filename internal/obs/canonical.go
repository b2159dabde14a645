package obs

import "strings"

// idPrefixes lists route prefixes whose next segment is an entity id.
var idPrefixes = []string{
	"/v1/users/",
	"/v1/news/",
	"/v1/ideation/",
	"/v1/ideations/",
	"/v1/board/",
	"/v1/investor/",
	"/v1/investments/",
	"/v1/comment/",
	"/v1/attachment/",
	"/v1/finance/",
	"/v1/chat/",
}

// knownSubPaths are literal paths that must not be collapsed.
var knownSubPaths = map[string]struct{}{
	"/v1/users/login":  {},
	"/v1/users/me":     {},
	"/v1/chat/rooms":   {},
	"/v1/chat/history": {},
	"/v1/chat/ws":      {},
}

// CanonicalPath collapses identifier segments so metric labels stay bounded.
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	if _, ok := knownSubPaths[path]; ok {
		return path
	}
	for _, prefix := range idPrefixes {
		rest, found := strings.CutPrefix(path, prefix)
		if !found || rest == "" {
			continue
		}
		if !strings.Contains(rest, "/") {
			return prefix + ":id"
		}
	}
	return path
}
