package sanitize_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"newsdesk/pkg/security/sanitize"
)

func TestSanitize_DefaultPolicy(t *testing.T) {
	s := sanitize.New(nil)

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "event handler and script removed",
			raw:  `<p onclick="x()">hi<script>bad()</script></p>`,
			want: `<p>hi</p>`,
		},
		{
			name: "style content removed",
			raw:  `<style>p{color:red}</style><b>bold</b>`,
			want: `<b>bold</b>`,
		},
		{
			name: "disallowed tag unwrapped",
			raw:  `<div><strong>x</strong> and <span>y</span></div>`,
			want: `<strong>x</strong> and y`,
		},
		{
			name: "plain text passes",
			raw:  `just text`,
			want: `just text`,
		},
		{
			name: "empty input",
			raw:  "   ",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Sanitize(tt.raw))
		})
	}
}

func TestSanitize_ImageSourceRestricted(t *testing.T) {
	s := sanitize.New(nil)

	got := s.Sanitize(`<p>a</p><img src="https://evil.example/x.png" onerror="steal()">`)

	assert.Contains(t, got, "<img")
	assert.NotContains(t, got, "evil.example")
	assert.NotContains(t, got, "onerror")
	assert.Contains(t, got, "<p>a</p>")
}

func TestSanitize_ImageSourceAllowed(t *testing.T) {
	s := sanitize.New(nil)

	for _, src := range []string{
		"https://point.md/a.jpg",
		"https://i.point.md/a.jpg",
		"https://www.point.md/a.jpg",
		"/static/a.jpg",
	} {
		got := s.Sanitize(`<img src="` + src + `">`)
		assert.Contains(t, got, src, "src %q", src)
	}
}

func TestSanitize_IframeDomains(t *testing.T) {
	s := sanitize.New(nil)

	kept := s.Sanitize(`<iframe src="https://www.youtube.com/embed/abc" width="500"></iframe>`)
	assert.Contains(t, kept, `src="https://www.youtube.com/embed/abc"`)
	assert.NotContains(t, kept, "width")

	dropped := s.Sanitize(`<iframe src="https://notyoutube.com/embed/abc"></iframe>`)
	assert.Contains(t, dropped, "<iframe")
	assert.NotContains(t, dropped, "notyoutube.com")
}

func TestSanitize_JavascriptURLRemoved(t *testing.T) {
	s := sanitize.New(nil)

	got := s.Sanitize(`<img src="javascript:alert(1)">`)
	assert.NotContains(t, strings.ToLower(got), "javascript")
}

func TestSanitize_CustomPolicy(t *testing.T) {
	s := sanitize.New(sanitize.Policy{"a": {"href": nil}, "p": {}})

	got := s.Sanitize(`<p><a href="https://anywhere.example/x" title="t">link</a><i>no</i></p>`)
	assert.Equal(t, `<p><a href="https://anywhere.example/x">link</a>no</p>`, got)
}

func TestSanitize_MalformedMarkup(t *testing.T) {
	s := sanitize.New(nil)

	assert.NotPanics(t, func() {
		got := s.Sanitize(`<p><b>unclosed <img src="https://evil.example/a.png" <<<>>> &&&`)
		assert.NotContains(t, got, "evil.example")
	})
}

func TestSanitize_Idempotent(t *testing.T) {
	s := sanitize.New(nil)

	inputs := []string{
		`<p onclick="x()">hi<script>bad()</script></p>`,
		`<img src="https://point.md/a.jpg"><iframe src="https://vimeo.com/1"></iframe>`,
		`Tom & Jerry <em>forever</em>`,
	}
	for _, in := range inputs {
		once := s.Sanitize(in)
		assert.Equal(t, once, s.Sanitize(once), "input %q", in)
	}
}

func TestAllowedURL(t *testing.T) {
	domains := []string{"youtube.com", "play.md"}

	tests := []struct {
		value string
		want  bool
	}{
		{"https://youtube.com/embed/x", true},
		{"https://www.youtube.com/embed/x", true},
		{"https://m.youtube.com/embed/x", true},
		{"https://YOUTUBE.com/embed/x", true},
		{"//play.md/video", true},
		{"/relative/path", true},
		{"relative.jpg", true},
		{"https://youtube.com.evil.example/x", false},
		{"https://notyoutube.com/x", false},
		{"https://example.com/?u=youtube.com", false},
		{"http://[::1", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitize.AllowedURL(tt.value, domains))
		})
	}
}

func TestFirstImageSource(t *testing.T) {
	assert.Equal(t, "https://point.md/1.jpg",
		sanitize.FirstImageSource(`<p>x</p><img src="https://point.md/1.jpg"><img src="https://point.md/2.jpg">`))
	assert.Equal(t, "", sanitize.FirstImageSource(`<p>no images</p>`))
	assert.Equal(t, "/a.png", sanitize.FirstImageSource(`<img><img src="/a.png">`))
}

func TestPolicy_CloneIsDeep(t *testing.T) {
	p := sanitize.DefaultPolicy()
	c := p.Clone()
	c["img"]["src"][0] = "changed.example"

	assert.Equal(t, []string{"point.md"}, p["img"]["src"])
	assert.Equal(t, []string{"changed.example"}, c["img"]["src"])
}
