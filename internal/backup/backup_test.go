package backup_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/newtab/internal/backup"
	"github.com/nikbrunner/newtab/internal/model"
)

var now = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func links(names ...string) model.Collection {
	out := make(model.Collection, len(names))
	for i, n := range names {
		out[i] = model.Item{Name: n, URL: "https://" + n + ".com"}
	}
	return out
}

func folder(name string, children ...string) model.Item {
	f := model.NewFolder(model.NewFolderParams{Name: name, Now: now})
	for _, c := range children {
		f.Children = append(f.Children, model.Link{Name: c, URL: "https://" + c + ".com"})
	}
	return f
}

// shape renders a collection as names, folders as name[children].
func shape(c model.Collection) string {
	parts := make([]string, len(c))
	for i, item := range c {
		if !item.IsFolder() {
			parts[i] = item.Name
			continue
		}
		kids := make([]string, len(item.Children))
		for k, ch := range item.Children {
			kids[k] = ch.Name
		}
		parts[i] = item.Name + "[" + strings.Join(kids, " ") + "]"
	}
	return strings.Join(parts, ",")
}

func TestExport_Payload(t *testing.T) {
	items := append(links("a"), folder("dev", "b", "c"))
	p := backup.Export(items, now)

	assert.Equal(t, p.Type, backup.FormatType)
	assert.Equal(t, p.Version, backup.FormatVersion)
	assert.Assert(t, p.ExportTime.Equal(now))
	assert.Assert(t, p.Shortcuts.Equal(items))

	p.Shortcuts[1].Children[0].Name = "changed"
	if items[1].Children[0].Name != "b" {
		t.Error("export must not share children with the collection")
	}
}

func TestExport_RoundTripIntoEmpty(t *testing.T) {
	items := append(links("a", "b"), folder("dev", "c", "d"))
	raw, err := backup.Marshal(backup.Export(items, now))
	assert.NilError(t, err)

	got, res := backup.Import(raw, model.Collection{}, now)
	assert.Assert(t, res.Success)
	assert.Equal(t, res.Count, 4)
	assert.Equal(t, shape(got), "a,b,dev[c d]")
	assert.Assert(t, got[2].IsFolder())
	assert.Assert(t, got[2].ID != items[2].ID, "imported folders get fresh ids")
}

func TestExport_JSONShape(t *testing.T) {
	raw, err := backup.Marshal(backup.Export(links("a"), now))
	assert.NilError(t, err)

	var doc map[string]any
	assert.NilError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, doc["type"], "simpleNewTab")
	assert.Equal(t, doc["version"], "2.0")
	assert.Equal(t, doc["exportTime"], "2026-03-14T09:30:00Z")
}

func TestFilename(t *testing.T) {
	assert.Equal(t, backup.Filename(now), "shortcuts-backup-2026-03-14.json")
}

func TestImport_Dedupe(t *testing.T) {
	existing := links("a")
	raw := `{"type":"simpleNewTab","version":"2.0","shortcuts":[
		{"name":"a again","url":"https://a.com"},
		{"name":"a twice","url":"https://a.com"}]}`

	got, res := backup.Import([]byte(raw), existing, now)
	assert.Assert(t, res.Success)
	assert.Equal(t, res.Count, 0)
	assert.Equal(t, res.Message, "所有快捷方式已存在，无需导入")
	assert.Equal(t, shape(got), "a")
}

func TestImport_DedupeWithinImport(t *testing.T) {
	raw := `{"type":"simpleNewTab","shortcuts":[
		{"name":"x","url":"https://x.com"},
		{"name":"x copy","url":"https://x.com"},
		{"name":"g","id":"folder_1","children":[
			{"name":"x3","url":"https://x.com"},
			{"name":"y","url":"https://y.com"},
			{"name":"z","url":"https://z.com"}]}]}`

	got, res := backup.Import([]byte(raw), nil, now)
	assert.Assert(t, res.Success)
	assert.Equal(t, res.Count, 3)
	assert.Equal(t, res.Message, "成功导入 3 个快捷方式")
	assert.Equal(t, shape(got), "x,g[y z]")
}

func TestImport_FolderRules(t *testing.T) {
	testCases := []struct {
		name     string
		existing model.Collection
		raw      string
		want     string
		count    int
	}{
		{
			name:     "merges into same-named folder",
			existing: model.Collection{folder("dev", "a", "b")},
			raw: `{"type":"simpleNewTab","shortcuts":[{"name":"dev","id":"folder_x","children":[
				{"name":"a","url":"https://a.com"},{"name":"c","url":"https://c.com"}]}]}`,
			want:  "dev[a b c]",
			count: 1,
		},
		{
			name: "single surviving child becomes a link",
			raw: `{"type":"simpleNewTab","shortcuts":[{"name":"g","id":"folder_x","children":[
				{"name":"only","url":"https://only.com"}]}]}`,
			want:  "only",
			count: 1,
		},
		{
			name:     "group with nothing new is dropped",
			existing: links("a"),
			raw: `{"type":"simpleNewTab","shortcuts":[{"name":"g","id":"folder_x","children":[
				{"name":"a","url":"https://a.com"}]}]}`,
			want:  "a",
			count: 0,
		},
		{
			name: "unnamed group gets the default name",
			raw: `{"type":"simpleNewTab","shortcuts":[{"name":"","id":"folder_x","children":[
				{"name":"a","url":"https://a.com"},{"name":"b","url":"https://b.com"}]}]}`,
			want:  "新文件夹[a b]",
			count: 2,
		},
		{
			name: "groups in one import do not merge with each other",
			raw: `{"type":"simpleNewTab","shortcuts":[
				{"name":"g","id":"folder_1","children":[{"name":"a","url":"https://a.com"},{"name":"b","url":"https://b.com"}]},
				{"name":"g","id":"folder_2","children":[{"name":"c","url":"https://c.com"},{"name":"d","url":"https://d.com"}]}]}`,
			want:  "g[a b],g[c d]",
			count: 4,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, res := backup.Import([]byte(tc.raw), tc.existing, now)
			assert.Assert(t, res.Success)
			assert.Equal(t, res.Count, tc.count)
			assert.Equal(t, shape(got), tc.want)
		})
	}
}

func TestImport_DoesNotModifyExisting(t *testing.T) {
	existing := model.Collection{folder("dev", "a", "b")}
	raw := `{"type":"simpleNewTab","shortcuts":[{"name":"dev","id":"folder_x","children":[
		{"name":"c","url":"https://c.com"}]}]}`

	_, res := backup.Import([]byte(raw), existing, now)
	assert.Assert(t, res.Success)
	assert.Equal(t, len(existing[0].Children), 2)
}

func TestImport_Failures(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		msg  string
	}{
		{name: "not json", raw: "{oops", msg: "文件解析失败，请确保是有效的 JSON 文件"},
		{name: "unknown object", raw: `{"hello":"world"}`, msg: "无效的备份文件格式"},
		{name: "wrong type tag", raw: `{"type":"other","shortcuts":[]}`, msg: "无效的备份文件格式"},
		{name: "shortcuts not a list", raw: `{"type":"simpleNewTab","shortcuts":{}}`, msg: "无效的备份文件格式"},
		{name: "infinity without sites", raw: `{"data":{"site":{}}}`, msg: "无效的备份文件格式"},
		{name: "infinity without web links", raw: `{"data":{"site":{"sites":[[{"type":"app","name":"x","target":"infinity://x"}]]}}}`, msg: "未找到可导入的网页快捷方式"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			existing := links("a")
			got, res := backup.Import([]byte(tc.raw), existing, now)
			assert.Assert(t, !res.Success)
			assert.Equal(t, res.Count, 0)
			assert.Equal(t, res.Message, tc.msg)
			assert.Equal(t, shape(got), "a")
		})
	}
}

func TestImport_EmptyNativeIsNoop(t *testing.T) {
	got, res := backup.Import([]byte(`{"type":"simpleNewTab","shortcuts":[]}`), links("a"), now)
	assert.Assert(t, res.Success)
	assert.Equal(t, res.Count, 0)
	assert.Equal(t, shape(got), "a")
}
