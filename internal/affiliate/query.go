package affiliate

import (
	"net/url"
	"strings"
)

type param struct {
	key   string
	value string
}

// mergeQuery grava os parâmetros na query da URL. Chaves já presentes são
// substituídas no lugar, novas vão para o fim, e as demais ficam intactas.
// Aplicar duas vezes dá o mesmo resultado.
func mergeQuery(raw string, params ...param) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw, false
	}

	var parts []string
	if u.RawQuery != "" {
		parts = strings.Split(u.RawQuery, "&")
	}

	for _, p := range params {
		encoded := url.QueryEscape(p.key) + "=" + url.QueryEscape(p.value)
		out := parts[:0:0]
		replaced := false
		for _, part := range parts {
			if queryKey(part) != p.key {
				out = append(out, part)
				continue
			}
			if !replaced {
				out = append(out, encoded)
				replaced = true
			}
		}
		if !replaced {
			out = append(out, encoded)
		}
		parts = out
	}

	u.RawQuery = strings.Join(parts, "&")
	return u.String(), true
}

func queryKey(part string) string {
	key := part
	if i := strings.IndexByte(part, '='); i >= 0 {
		key = part[:i]
	}
	if k, err := url.QueryUnescape(key); err == nil {
		return k
	}
	return key
}
