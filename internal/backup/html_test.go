package backup_test

import (
	"strings"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	"gotest.tools/v3/golden"

	"github.com/nikbrunner/newtab/internal/backup"
	"github.com/nikbrunner/newtab/internal/model"
)

func TestExportHTML(t *testing.T) {
	items := model.Collection{
		{Name: "GitHub", URL: "https://github.com"},
		{
			Name:      "Dev & Docs",
			ID:        "folder_fixed",
			UpdatedAt: time.Unix(1700000000, 0),
			Children: []model.Link{
				{Name: "Go", URL: "https://go.dev"},
				{Name: "Search <q>", URL: "https://example.com/?a=1&b=2"},
			},
		},
		{Name: "Wiki", URL: "https://wikipedia.org"},
	}

	golden.Assert(t, backup.ExportHTML(items), "golden/export.golden")
}

func TestExportHTML_Empty(t *testing.T) {
	out := backup.ExportHTML(nil)
	assert.Assert(t, strings.HasPrefix(out, "<!DOCTYPE NETSCAPE-Bookmark-file-1>\n"))
	assert.Assert(t, strings.HasSuffix(out, "<DL><p>\n</DL><p>\n"))
}

func TestImportHTML(t *testing.T) {
	doc := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><H3 ADD_DATE="1234567890">Development</H3>
    <DL><p>
        <DT><H3>React</H3>
        <DL><p>
            <DT><A HREF="https://react.dev">React Docs</A>
        </DL><p>
        <DT><A HREF="https://github.com">GitHub</A>
    </DL><p>
    <DT><A HREF="https://google.com" ADD_DATE="1234567890">Google</A>
    <DT><A HREF="javascript:void(0)">Bookmarklet</A>
    <DT><A HREF="https://untitled.example"></A>
</DL><p>`

	got, res := backup.ImportHTML(strings.NewReader(doc), nil, now)
	assert.Assert(t, res.Success)
	assert.Equal(t, res.Count, 4)
	assert.Equal(t, shape(got), "Development[React Docs GitHub],Google,https://untitled.example")
}

func TestImportHTML_RoundTrip(t *testing.T) {
	items := append(links("a", "b"), folder("dev", "c", "d"))

	got, res := backup.ImportHTML(strings.NewReader(backup.ExportHTML(items)), nil, now)
	assert.Assert(t, res.Success)
	assert.Equal(t, res.Count, 4)
	assert.Equal(t, shape(got), shape(items))
}

func TestImportHTML_NoLinks(t *testing.T) {
	_, res := backup.ImportHTML(strings.NewReader("<p>nothing here</p>"), nil, now)
	assert.Assert(t, !res.Success)
	assert.Equal(t, res.Message, "未找到可导入的网页快捷方式")
}
