package orchestrator

import (
	"encoding/csv"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	cfg "github.com/maastricht-university/walkid/config"
)

// Loader reads walking recordings from a directory.
type Loader struct {
	Fs  afero.Fs
	Dir string
	Cfg cfg.Data
	Log logrus.FieldLogger
}

// SpeakerOf extracts the speaker from a file name such as walking-data-alice-1.csv.
func SpeakerOf(name string, field int) (string, error) {
	parts := strings.Split(name, "-")
	if field >= len(parts) {
		return "", errors.Errorf("file name %q has no speaker segment %d", name, field)
	}
	speaker := parts[field]
	if field == len(parts)-1 {
		speaker = strings.TrimSuffix(speaker, filepath.Ext(speaker))
	}
	if speaker == "" {
		return "", errors.Errorf("file name %q has an empty speaker segment", name)
	}
	return speaker, nil
}

// Load reads every matching file. Speakers are labelled in lexicographic order and files are read
// sorted by speaker, then name.
func (l *Loader) Load() (*Corpus, error) {
	infos, err := afero.ReadDir(l.Fs, l.Dir)
	if err != nil {
		return nil, errors.Wrapf(err, "listing data directory %s", l.Dir)
	}

	type entry struct{ name, speaker string }
	var files []entry
	speakers := make(map[string]bool)
	for _, fi := range infos {
		name := fi.Name()
		if fi.IsDir() || !strings.HasPrefix(name, l.Cfg.Prefix) || !strings.HasSuffix(name, l.Cfg.Suffix) {
			continue
		}
		speaker, err := SpeakerOf(name, l.Cfg.SpeakerField)
		if err != nil {
			return nil, err
		}
		files = append(files, entry{name: name, speaker: speaker})
		speakers[speaker] = true
	}
	if len(files) == 0 {
		return nil, errors.Errorf("no %s*%s files in %s", l.Cfg.Prefix, l.Cfg.Suffix, l.Dir)
	}

	corpus := &Corpus{}
	for s := range speakers {
		corpus.Classes = append(corpus.Classes, s)
	}
	sort.Strings(corpus.Classes)
	labels := make(map[string]int, len(corpus.Classes))
	for i, s := range corpus.Classes {
		labels[s] = i
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].speaker != files[j].speaker {
			return files[i].speaker < files[j].speaker
		}
		return files[i].name < files[j].name
	})

	for _, f := range files {
		log := l.Log.WithFields(logrus.Fields{"speaker": f.speaker, "file": f.name})
		log.Infof("Loading data for %s.", f.speaker)

		path := filepath.Join(l.Dir, f.name)
		samples, err := l.ReadFile(path)
		if err != nil {
			return nil, err
		}
		label := labels[f.speaker]
		for i := range samples {
			samples[i].Label = label
		}
		log.Infof("Loaded %d raw labelled samples.", len(samples))
		corpus.Recordings = append(corpus.Recordings, Recording{
			Path:    path,
			Speaker: f.speaker,
			Label:   label,
			Samples: samples,
		})
	}

	l.Log.Infof("Found data for %d speakers : %s", len(corpus.Classes), strings.Join(corpus.Classes, ", "))
	return corpus, nil
}

// ReadFile parses one recording. The first row is a header; every row must have exactly the configured
// number of columns, of which the first five are decoded.
func (l *Loader) ReadFile(path string) ([]Sample, error) {
	f, err := l.Fs.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = l.Cfg.Columns
	r.TrimLeadingSpace = true
	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return nil, errors.Errorf("%s is empty", path)
		}
		return nil, errors.Wrapf(err, "reading header of %s", path)
	}

	var samples []Sample
	if err := gocsv.UnmarshalCSVWithoutHeaders(&leading{r: r, keep: sampleColumns}, &samples); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return samples, nil
}

// sampleColumns is the number of CSV columns decoded into a Sample.
const sampleColumns = 5

// leading passes on the first keep fields of every record.
type leading struct {
	r    *csv.Reader
	keep int
}

func (l *leading) Read() ([]string, error) {
	rec, err := l.r.Read()
	if err != nil {
		return nil, err
	}
	return rec[:l.keep], nil
}

func (l *leading) ReadAll() ([][]string, error) {
	var out [][]string
	for {
		rec, err := l.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}
