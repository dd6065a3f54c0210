package palnorm

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bodgit/palnorm/indexed"
	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, file string, m image.Image) {
	t.Helper()
	require.Nil(t, os.MkdirAll(filepath.Dir(file), 0o755))
	f, err := os.Create(file)
	require.Nil(t, err)
	defer f.Close()
	require.Nil(t, png.Encode(f, m))
}

func writeFile(t *testing.T, file, contents string) {
	t.Helper()
	require.Nil(t, os.MkdirAll(filepath.Dir(file), 0o755))
	require.Nil(t, os.WriteFile(file, []byte(contents), 0o644))
}

func assertExists(t *testing.T, file string) {
	t.Helper()
	_, err := os.Stat(file)
	assert.Nil(t, err, "missing %s", file)
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "a", "Base.png"), makePaletted(2, 2, rgb, 0, 1, 1, 2))
	writePNG(t, filepath.Join(root, "a", "Sprite 1.png"), makePaletted(2, 2, rgb, 1, 2, 2, 0))
	writeFile(t, filepath.Join(root, "a", "broken.png"), "not a png")
	writeFile(t, filepath.Join(root, "a", "notes.txt"), "ignored")
	writePNG(t, filepath.Join(root, "b", "c", "x.png"), makePaletted(1, 1, rgb, 2))
	writePNG(t, filepath.Join(root, ".hidden", "y.png"), makePaletted(1, 1, rgb, 2))
	writePNG(t, filepath.Join(root, "out", "stale.png"), makePaletted(1, 1, rgb, 2))

	n, _ := newTestNormalizer(options(nil))
	r, err := n.Scan(root, filepath.Join(root, "out"))
	require.Nil(t, err)

	assert.Equal(t, 3, r.Count(Processed))
	assert.Equal(t, 1, r.Count(Failed))
	assert.Len(t, r.Results, 4)

	res, ok := r.Find("a", "broken")
	require.True(t, ok)
	assert.Equal(t, Failed, res.Status)

	_, ok = r.Find("b/c", "x")
	assert.True(t, ok)

	for _, file := range []string{
		"a/Base.pal",
		"a/Sprite_1.pal",
		"a/Sprite_1_output.png",
		"b/c/x_no_base.pal",
		"b/c/x_raw.png",
	} {
		assertExists(t, filepath.Join(root, "out", filepath.FromSlash(file)))
	}

	_, err = os.Stat(filepath.Join(root, "out", "out"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(root, "out", ".hidden"))
	assert.True(t, os.IsNotExist(err))
}

func TestScanTransparentPalette(t *testing.T) {
	root, out := t.TempDir(), t.TempDir()
	p := color.Palette{
		color.NRGBA{255, 0, 255, 0},
		color.NRGBA{200, 100, 50, 128},
		color.NRGBA{1, 2, 3, 255},
	}
	writePNG(t, filepath.Join(root, "t", "Sprite.png"), makePaletted(3, 1, p, 0, 1, 2))

	n, _ := newTestNormalizer(options(nil))
	r, err := n.Scan(root, out)
	require.Nil(t, err)
	assert.Equal(t, 1, r.Count(Processed))

	b, err := os.ReadFile(filepath.Join(out, "t", "Sprite_no_base.pal"))
	require.Nil(t, err)
	assert.Equal(t, "JASC-PAL\n0100\n3\n255 0 255\n200 100 50\n1 2 3", string(b))
}

func TestScanMissing(t *testing.T) {
	n, _ := newTestNormalizer(options(nil))
	_, err := n.Scan(filepath.Join(t.TempDir(), "missing"), t.TempDir())
	assert.NotNil(t, err)
}

func createZip(t *testing.T, file string, members map[string]image.Image) {
	t.Helper()
	f, err := os.Create(file)
	require.Nil(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, m := range members {
		fw, err := w.Create(name)
		require.Nil(t, err)
		require.Nil(t, png.Encode(fw, m))
	}
	require.Nil(t, w.Close())
}

func TestScanZip(t *testing.T) {
	file := filepath.Join(t.TempDir(), "sprites.zip")
	createZip(t, file, map[string]image.Image{
		"Base.png":          makePaletted(2, 2, rgb, 0, 1, 1, 2),
		"Sprite1.png":       makePaletted(2, 2, rgb, 1, 2, 2, 0),
		"more/Other.png":    makePaletted(1, 1, rgb, 0),
		"__MACOSX/._x.png":  makePaletted(1, 1, rgb, 0),
		"more/.hidden.png":  makePaletted(1, 1, rgb, 0),
		"more/ignored.jpeg": makePaletted(1, 1, rgb, 0),
	})

	n, _ := newTestNormalizer(options(nil))
	collections, err := n.LoadZip(file)
	require.Nil(t, err)
	require.Len(t, collections, 2)
	assert.Equal(t, ".", collections[0].Name)
	assert.Equal(t, "more", collections[1].Name)
	assert.True(t, collections[0].HasBase())
	assert.Equal(t, []string{"Other"}, collections[1].Variants())

	out := t.TempDir()
	r, err := n.ScanZip(file, out)
	require.Nil(t, err)
	assert.Equal(t, 3, r.Count(Processed))

	assertExists(t, filepath.Join(out, "Base.pal"))
	assertExists(t, filepath.Join(out, "Sprite1_output.png"))
	assertExists(t, filepath.Join(out, "more", "Other_no_base.pal"))
}

func TestScanZipMissing(t *testing.T) {
	n, _ := newTestNormalizer(options(nil))
	_, err := n.ScanZip(filepath.Join(t.TempDir(), "missing.zip"), t.TempDir())
	assert.NotNil(t, err)
}

const bundle = `{
	"Base": {"pixels": [[0, 1], [1, 2]], "palette": [[255, 0, 0], [0, 255, 0], [0, 0, 255]]},
	"Sprite1": {"pixels": [[1, 2], [2, 0]], "palette": [[255, 0, 0], [0, 255, 0], [0, 0, 255]]},
	"Broken": {"pixels": [[4]], "palette": [[0, 0, 0]]},
	"Wrong": {"pixels": "nope"}
}`

func TestProcessBundle(t *testing.T) {
	n, _ := newTestNormalizer(options(func(o *Options) { o.Preview = true }))

	sink := new(MemSink)
	r, err := n.ProcessBundle(strings.NewReader(bundle), sink)
	require.Nil(t, err)

	assert.Equal(t, 2, r.Count(Processed))
	assert.Equal(t, 2, r.Count(Failed))
	for _, name := range []string{"Broken", "Wrong"} {
		res, ok := r.Find("", name)
		require.True(t, ok)
		assert.True(t, errors.Is(res.Err, indexed.ErrInvalidInput), "unexpected error %v", res.Err)
	}

	assert.Equal(t, []string{"Base.pal", "Sprite1.pal", "Sprite1_output.png", PreviewFilename}, sink.Names())
	assert.Equal(t, "JASC-PAL\n0100\n3\n255 0 0\n0 255 0\n0 0 255", readPalette(t, sink, "Base.pal"))
}

func TestLoadBundleDuplicateNames(t *testing.T) {
	n, logged := newTestNormalizer(options(nil))

	// Both names sanitize to a_b, the first in sorted order wins
	c, err := n.LoadBundle(strings.NewReader(`{
		"a-b": {"pixels": [[0]], "palette": [[0, 0, 0], [255, 255, 255]]},
		"a b": {"pixels": [[1]], "palette": [[0, 0, 0], [255, 255, 255]]}
	}`), "")
	require.Nil(t, err)
	assert.Equal(t, 1, c.Len())

	m, ok := c.Image("a_b")
	require.True(t, ok)
	assert.Equal(t, []uint8{1}, m.Pix)
	assert.Contains(t, logged.String(), `Ignoring "a_b"`)
}

func TestProcessBundleMalformed(t *testing.T) {
	n, _ := newTestNormalizer(options(nil))
	_, err := n.ProcessBundle(strings.NewReader("[1, 2, 3]"), new(MemSink))
	assert.True(t, errors.Is(err, indexed.ErrInvalidInput))
}

func TestDirSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	w, err := DirSink(dir).Create("a.pal")
	require.Nil(t, err)
	_, err = io.WriteString(w, "JASC-PAL")
	require.Nil(t, err)
	require.Nil(t, w.Close())

	b, err := os.ReadFile(filepath.Join(dir, "a.pal"))
	require.Nil(t, err)
	assert.Equal(t, "JASC-PAL", string(b))
}

func TestDirSinkRemovesPartialArtifact(t *testing.T) {
	dir := t.TempDir()
	err := writeArtifact(DirSink(dir), "a.pal", func(w io.Writer) error {
		if _, err := io.WriteString(w, "JASC"); err != nil {
			return err
		}
		return errors.New("short write")
	})
	assert.NotNil(t, err)

	_, err = os.Stat(filepath.Join(dir, "a.pal"))
	assert.True(t, os.IsNotExist(err))
}
