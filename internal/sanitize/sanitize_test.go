package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean_KeepsAnnotationMarkup(t *testing.T) {
	in := `<p>see <span class="pc-cite pc-cite-number" title="Matched reference">[<a class="pc-cite-link" href="#ref-3" data-ref-number="3">3</a>]</span></p>`

	out, err := Clean(in)
	require.NoError(t, err)

	assert.Contains(t, out, `data-ref-number="3"`)
	assert.Contains(t, out, `class="pc-cite pc-cite-number"`)
	assert.Contains(t, out, `href="#ref-3"`)
	assert.Contains(t, out, `title="Matched reference"`)
}

func TestClean_DropsScriptAndStyleWhole(t *testing.T) {
	in := `<p>ok</p><script>alert("x")</script><style>p{color:red}</style>`

	out, err := Clean(in)
	require.NoError(t, err)

	assert.NotContains(t, out, "script")
	assert.NotContains(t, out, "alert")
	assert.NotContains(t, out, "color:red")
	assert.Contains(t, out, "<p>ok</p>")
}

func TestClean_UnwrapsDisallowedTags(t *testing.T) {
	in := `<article><p>text <font color="red">inside</font></p></article>`

	out, err := Clean(in)
	require.NoError(t, err)

	assert.NotContains(t, out, "article")
	assert.NotContains(t, out, "font")
	assert.Contains(t, out, "text inside")
}

func TestClean_FiltersAttributes(t *testing.T) {
	in := `<span class="pc-cite" onclick="steal()" data-x="1">t</span>`

	out, err := Clean(in)
	require.NoError(t, err)

	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "data-x")
	assert.Contains(t, out, `class="pc-cite"`)
}

func TestClean_HrefSchemes(t *testing.T) {
	tests := []struct {
		name string
		href string
		kept bool
	}{
		{"fragment", "#ref-1", true},
		{"root relative", "/refs/1", true},
		{"https", "https://doi.org/x", true},
		{"http", "http://example.com", true},
		{"javascript", "javascript:alert(1)", false},
		{"data", "data:text/html;base64,x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Clean(`<a href="` + tt.href + `">x</a>`)
			require.NoError(t, err)
			if tt.kept {
				assert.Contains(t, out, "href=")
			} else {
				assert.NotContains(t, out, "href=")
				assert.Contains(t, out, "<a>x</a>")
			}
		})
	}
}

func TestClean_EscapesText(t *testing.T) {
	out, err := Clean(`<p>a &lt;b&gt; &amp; c</p>`)
	require.NoError(t, err)
	assert.Equal(t, `<p>a &lt;b&gt; &amp; c</p>`, out)
}

func TestClean_DropsComments(t *testing.T) {
	out, err := Clean(`<p>a</p><!-- hidden -->`)
	require.NoError(t, err)
	assert.NotContains(t, out, "hidden")
}

func TestClean_StrikethroughAndGlyphSurvive(t *testing.T) {
	in := `<span class="pc-cite pc-cite-orphaned" title="Reference no longer exists"><s>[9]</s> &#9888;</span>`

	out, err := Clean(in)
	require.NoError(t, err)

	assert.Contains(t, out, "<s>[9]</s>")
	assert.Contains(t, out, "pc-cite-orphaned")
}
