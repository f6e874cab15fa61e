package moderation

import (
	"bufio"
	"bytes"
	"chat-relay/errors"
	"embed"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/samber/lo"
)

//go:embed censored/*.txt
var censoredFolder embed.FS

const censoredDir = "censored"

// WordList carries the loaded dictionary and the languages it came from.
type WordList struct {
	Words     []string
	Languages []string
}

// LoadWords reads every .txt file of dir as a language dictionary, one word
// per line, and merges them into a sorted list of unique words.
func LoadWords(fsys fs.FS, dir string) (WordList, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return WordList{}, err
	}

	var list WordList
	var words []string
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".txt" {
			continue
		}
		list.Languages = append(list.Languages, strings.TrimSuffix(entry.Name(), ".txt"))

		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return WordList{}, err
		}

		// Scanner handles \n and \r\n alike
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				words = append(words, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return WordList{}, err
		}
	}

	list.Words = lo.Uniq(words)
	if len(list.Words) == 0 {
		return WordList{}, errors.ErrEmptyWords
	}
	slices.Sort(list.Words)
	return list, nil
}

// LoadEmbeddedWords returns the dictionary shipped with the binary.
func LoadEmbeddedWords() (WordList, error) {
	return LoadWords(censoredFolder, censoredDir)
}
