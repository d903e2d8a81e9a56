package stitch

import (
	"image"
	"image/color"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"golang.org/x/image/tiff"
)

func writeTestImages(t *testing.T, dir string) {
	t.Helper()
	img := image.NewGray16(image.Rect(0, 0, 40, 30))
	img.SetGray16(5, 5, color.Gray16{Y: 0xffff})

	test.That(t, WritePNG(img, filepath.Join(dir, "a.png")), test.ShouldBeNil)

	f, err := os.Create(filepath.Join(dir, "b.tif"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tiff.Encode(f, img, nil), test.ShouldBeNil)
	test.That(t, f.Close(), test.ShouldBeNil)
}

func TestLoadLayer(t *testing.T) {
	dir := t.TempDir()
	writeTestImages(t, dir)

	for _, name := range []string{"a.png", "b.tif"} {
		l, err := LoadLayer(filepath.Join(dir, name))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, l.Filename(), test.ShouldEqual, name)
		test.That(t, l.Bounds(), test.ShouldResemble, image.Rect(0, 0, 40, 30))
		test.That(t, l.Gray.Get(5, 5), test.ShouldEqual, 1.0)
		test.That(t, l.Gray.Get(6, 5), test.ShouldEqual, 0.0)
		test.That(t, l.CameraInfo.String(), test.ShouldEqual, "camera unknown")
	}

	_, err := LoadLayer(filepath.Join(dir, "missing.png"))
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)

	junk := filepath.Join(dir, "junk.png")
	test.That(t, ioutil.WriteFile(junk, []byte("not a png"), 0o644), test.ShouldBeNil)
	_, err = LoadLayer(junk)
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)
}

func TestLoadFilesAndDirs(t *testing.T) {
	logger := golog.NewTestLogger(t)
	dir := t.TempDir()
	writeTestImages(t, dir)
	test.That(t, ioutil.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o644), test.ShouldBeNil)
	test.That(t, ioutil.WriteFile(filepath.Join(dir, "stitch.yaml"), []byte("verbosity: 2\nransac:\n  seed: 9\n"), 0o644), test.ShouldBeNil)

	in := NewInputs()
	test.That(t, in.LoadFilesAndDirs(logger, dir), test.ShouldBeNil)
	test.That(t, in.Layers, test.ShouldHaveLength, 2)
	test.That(t, in.Layers[0].Filename(), test.ShouldEqual, "a.png")
	test.That(t, in.Layers[1].Filename(), test.ShouldEqual, "b.tif")
	test.That(t, in.ConfigFilename, test.ShouldEqual, filepath.Join(dir, "stitch.yaml"))
	test.That(t, in.Config.Verbosity, test.ShouldEqual, 2)
	test.That(t, in.Config.Ransac.Seed, test.ShouldEqual, int64(9))
	test.That(t, in.Config.Ransac.Iterations, test.ShouldEqual, 1000)

	// Named files keep the order they were given in
	in = NewInputs()
	test.That(t, in.LoadFilesAndDirs(logger, filepath.Join(dir, "b.tif"), filepath.Join(dir, "a.png")), test.ShouldBeNil)
	test.That(t, in.Layers[0].Filename(), test.ShouldEqual, "b.tif")
	test.That(t, in.Config, test.ShouldResemble, NewConfig())

	in = NewInputs()
	err := in.LoadFilesAndDirs(logger, filepath.Join(dir, "nope"))
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)

	test.That(t, ioutil.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("ransac: [1"), 0o644), test.ShouldBeNil)
	err = in.LoadFilesAndDirs(logger, filepath.Join(dir, "bad.yaml"))
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)
}
