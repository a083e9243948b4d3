// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ingest

import (
	"archive/zip"
	"io"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/taibuivan/toonhive/internal/platform/apperr"
	"github.com/taibuivan/toonhive/pkg/natsort"
)

// chapterNumberPattern extracts the first run of digits, with an optional
// decimal part, from a folder name. "Chapitre 10.5 (fin)" yields 10.5.
var chapterNumberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// imageExtensions lists the accepted page formats, lowercase.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

/*
ExtractArchive parses a ZIP archive into chapter inputs.

Layout rules:
  - Every folder whose base name contains a number defines a chapter; the
    first digit run (optional decimal) in the base name is the chapter
    number.
  - An image entry belongs to the chapter folder that is exactly its parent
    directory. Images elsewhere (archive root, unnumbered folders, deeper
    nesting) are ignored.
  - Pages are ordered by natural filename comparison, so page2 precedes
    page10 regardless of how the archiver sorted the entries.
  - Folders that end up with no images are dropped.

The returned inputs are sorted by chapter number ascending and carry open
functions backed by the archive, so the archive reader must stay valid until
ingestion finishes.
*/
func ExtractArchive(readerAt io.ReaderAt, size int64) ([]ChapterInput, error) {
	archive, err := zip.NewReader(readerAt, size)
	if err != nil {
		return nil, apperr.ValidationError("Invalid ZIP archive")
	}

	type chapterFolder struct {
		number float64
		pages  []PageFile
	}

	// 1. Discover chapter folders, from explicit directory entries and from
	//    the parents of file entries (many archivers omit directory records).
	folders := map[string]*chapterFolder{}
	register := func(dir string) {
		if dir == "" || dir == "." || dir == "/" {
			return
		}
		dir = strings.TrimSuffix(dir, "/")
		if _, ok := folders[dir]; ok {
			return
		}

		match := chapterNumberPattern.FindString(path.Base(dir))
		if match == "" {
			return
		}
		number, err := strconv.ParseFloat(match, 64)
		if err != nil {
			return
		}
		folders[dir] = &chapterFolder{number: number}
	}

	for _, entry := range archive.File {
		if entry.FileInfo().IsDir() {
			register(entry.Name)
		} else {
			register(path.Dir(entry.Name))
		}
	}

	// 2. Assign images to their exact parent folder
	for _, entry := range archive.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		if !imageExtensions[strings.ToLower(path.Ext(entry.Name))] {
			continue
		}

		folder, ok := folders[path.Dir(entry.Name)]
		if !ok {
			continue
		}

		file := entry
		folder.pages = append(folder.pages, PageFile{
			Filename:    path.Base(file.Name),
			ContentType: contentTypeOf(file.Name),
			Size:        int64(file.UncompressedSize64),
			Open: func() (io.ReadCloser, error) {
				return file.Open()
			},
		})
	}

	// 3. Order pages naturally, drop empty folders, order chapters by number
	var inputs []ChapterInput
	for _, folder := range folders {
		if len(folder.pages) == 0 {
			continue
		}

		sort.Slice(folder.pages, func(i, j int) bool {
			return natsort.Compare(folder.pages[i].Filename, folder.pages[j].Filename) < 0
		})

		inputs = append(inputs, ChapterInput{
			Number: folder.number,
			Pages:  folder.pages,
		})
	}

	sort.Slice(inputs, func(i, j int) bool {
		return inputs[i].Number < inputs[j].Number
	})

	return inputs, nil
}

func contentTypeOf(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
