package translator

import (
	"fmt"
	"net/url"
	"path/filepath"

	e "github.com/fansqz/go-debug-translator/error"
)

// urlToPath 把客户端的url转成文件路径，支持 file:// 和直接传路径
func urlToPath(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("%w: empty url", e.ErrInvalidParams)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: url %q", e.ErrInvalidParams, raw)
	}
	switch u.Scheme {
	case "file":
		return filepath.FromSlash(u.Path), nil
	case "":
		path, err := url.PathUnescape(raw)
		if err != nil {
			return "", fmt.Errorf("%w: url %q", e.ErrInvalidParams, raw)
		}
		return filepath.FromSlash(path), nil
	default:
		return "", fmt.Errorf("%w: unsupported url scheme %q", e.ErrInvalidParams, u.Scheme)
	}
}

func pathToURL(path string) string {
	u := &url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}
