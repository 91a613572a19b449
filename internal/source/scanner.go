package source

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// PrefsFile is a SharedPreferences XML file exported from the mobile app.
type PrefsFile struct {
	Path      string
	Namespace string // file name without ".xml", e.g. "wallet_prefs"
}

// PrefEntry is one typed value read from a PrefsFile.
type PrefEntry struct {
	Namespace string
	Key       string
	Type      string // string, boolean, int, long or float
	Value     string
}

// knownNamespaces are the preference files the app writes.
var knownNamespaces = map[string]bool{
	"wallet_prefs":       true,
	"notification_prefs": true,
	"user_prefs":         true,
	"profile_prefs":      true,
}

// ScanPrefsDir finds the app's preference files in dir, typically a copy of
// the app's shared_prefs directory. Unknown files are ignored.
func ScanPrefsDir(dir string) ([]PrefsFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var files []PrefsFile
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".xml" {
			continue
		}
		ns := strings.TrimSuffix(e.Name(), ".xml")
		if !knownNamespaces[ns] {
			continue
		}
		files = append(files, PrefsFile{Path: filepath.Join(dir, e.Name()), Namespace: ns})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Namespace < files[j].Namespace })
	return files, nil
}

type xmlPrefs struct {
	Entries []xmlEntry `xml:",any"`
}

type xmlEntry struct {
	XMLName xml.Name
	Name    string `xml:"name,attr"`
	Value   string `xml:"value,attr"`
	Text    string `xml:",chardata"`
}

// ParsePrefsFile reads every entry of a preference file. Entries with an
// unknown element type or no name are skipped and counted.
func ParsePrefsFile(pf PrefsFile) ([]PrefEntry, ParseResult, error) {
	var res ParseResult

	data, err := os.ReadFile(pf.Path)
	if err != nil {
		return nil, res, err
	}

	var doc xmlPrefs
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, res, fmt.Errorf("parsing %s: %w", filepath.Base(pf.Path), err)
	}

	res.Total = len(doc.Entries)
	out := make([]PrefEntry, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		if e.Name == "" {
			res.ParseErrors++
			continue
		}
		kind := e.XMLName.Local
		var value string
		switch kind {
		case "string":
			value = e.Text
		case "boolean", "int", "long", "float":
			value = e.Value
		default:
			res.ParseErrors++
			continue
		}
		out = append(out, PrefEntry{
			Namespace: pf.Namespace,
			Key:       e.Name,
			Type:      kind,
			Value:     value,
		})
	}
	return out, res, nil
}
