// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ingest

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildArchive assembles an in-memory ZIP from entry names. Names ending in
// "/" become explicit directory records.
func buildArchive(t *testing.T, names ...string) *bytes.Reader {
	t.Helper()

	var buffer bytes.Buffer
	writer := zip.NewWriter(&buffer)
	for _, name := range names {
		entry, err := writer.Create(name)
		require.NoError(t, err)
		if name[len(name)-1] != '/' {
			_, err = entry.Write([]byte("image-bytes"))
			require.NoError(t, err)
		}
	}
	require.NoError(t, writer.Close())

	return bytes.NewReader(buffer.Bytes())
}

func extract(t *testing.T, reader *bytes.Reader) []ChapterInput {
	t.Helper()
	inputs, err := ExtractArchive(reader, reader.Size())
	require.NoError(t, err)
	return inputs
}

func pageNames(input ChapterInput) []string {
	names := make([]string, len(input.Pages))
	for index, page := range input.Pages {
		names[index] = page.Filename
	}
	return names
}

func TestExtractArchive_DecimalChapterNumberAndNaturalOrder(t *testing.T) {
	reader := buildArchive(t,
		"Chapitre 10.5/page10.jpg",
		"Chapitre 10.5/page2.jpg",
		"Chapitre 10.5/page1.jpg",
	)

	inputs := extract(t, reader)
	require.Len(t, inputs, 1)

	assert.Equal(t, 10.5, inputs[0].Number)
	assert.Equal(t, []string{"page1.jpg", "page2.jpg", "page10.jpg"}, pageNames(inputs[0]))
}

func TestExtractArchive_ChaptersSortedByNumber(t *testing.T) {
	reader := buildArchive(t,
		"ch 12/a.png",
		"ch 3/a.png",
		"ch 7.5/a.png",
	)

	inputs := extract(t, reader)
	require.Len(t, inputs, 3)

	assert.Equal(t, 3.0, inputs[0].Number)
	assert.Equal(t, 7.5, inputs[1].Number)
	assert.Equal(t, 12.0, inputs[2].Number)
}

func TestExtractArchive_NumberIsFirstDigitRunInFolderName(t *testing.T) {
	reader := buildArchive(t, "Season 2 - Episode 14/a.jpg")

	inputs := extract(t, reader)
	require.Len(t, inputs, 1)
	assert.Equal(t, 2.0, inputs[0].Number)
}

func TestExtractArchive_IgnoresStrayEntries(t *testing.T) {
	reader := buildArchive(t,
		"cover.jpg",            // archive root, no chapter
		"extras/bonus.jpg",     // unnumbered folder
		"ch 1/page1.jpg",
		"ch 1/notes.txt",       // not an image
		"ch 1/sub/deep.jpg",    // nested below the chapter folder
	)

	inputs := extract(t, reader)
	require.Len(t, inputs, 1)
	assert.Equal(t, []string{"page1.jpg"}, pageNames(inputs[0]))
}

func TestExtractArchive_EmptyChapterFolderDropped(t *testing.T) {
	reader := buildArchive(t,
		"ch 1/",
		"ch 2/page1.webp",
	)

	inputs := extract(t, reader)
	require.Len(t, inputs, 1)
	assert.Equal(t, 2.0, inputs[0].Number)
}

func TestExtractArchive_PagesAreReadable(t *testing.T) {
	reader := buildArchive(t, "ch 1/page1.jpg")

	inputs := extract(t, reader)
	require.Len(t, inputs, 1)
	require.Len(t, inputs[0].Pages, 1)

	page := inputs[0].Pages[0]
	assert.Equal(t, "image/jpeg", page.ContentType)
	assert.Equal(t, int64(len("image-bytes")), page.Size)

	opened, err := page.Open()
	require.NoError(t, err)
	defer opened.Close()

	content, err := io.ReadAll(opened)
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(content))
}

func TestExtractArchive_CaseInsensitiveExtensions(t *testing.T) {
	reader := buildArchive(t, "ch 1/PAGE1.JPG", "ch 1/page2.PnG")

	inputs := extract(t, reader)
	require.Len(t, inputs, 1)
	assert.Len(t, inputs[0].Pages, 2)
}

func TestExtractArchive_InvalidArchive(t *testing.T) {
	garbage := bytes.NewReader([]byte("this is not a zip"))

	_, err := ExtractArchive(garbage, garbage.Size())
	assert.Error(t, err)
}
