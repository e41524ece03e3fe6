package affiliate

import "testing"

func TestMergeQuery(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		params []param
		want   string
		ok     bool
	}{
		{
			name:   "sem query",
			raw:    "https://a.com/x",
			params: []param{{"tag", "t"}},
			want:   "https://a.com/x?tag=t",
			ok:     true,
		},
		{
			name:   "substitui no lugar",
			raw:    "https://a.com/x?tag=old&k=v",
			params: []param{{"tag", "new"}},
			want:   "https://a.com/x?tag=new&k=v",
			ok:     true,
		},
		{
			name:   "remove chaves repetidas",
			raw:    "https://a.com/x?tag=1&k=v&tag=2",
			params: []param{{"tag", "3"}},
			want:   "https://a.com/x?tag=3&k=v",
			ok:     true,
		},
		{
			name:   "mantém fragmento",
			raw:    "https://a.com/x?k=v#top",
			params: []param{{"tag", "t"}},
			want:   "https://a.com/x?k=v&tag=t#top",
			ok:     true,
		},
		{
			name:   "escapa valores",
			raw:    "https://a.com/x",
			params: []param{{"utm_content", "h&m"}},
			want:   "https://a.com/x?utm_content=h%26m",
			ok:     true,
		},
		{
			name:   "sem esquema",
			raw:    "a.com/x",
			params: []param{{"tag", "t"}},
			want:   "a.com/x",
			ok:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := mergeQuery(tt.raw, tt.params...)
			if got != tt.want || ok != tt.ok {
				t.Errorf("mergeQuery() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}
