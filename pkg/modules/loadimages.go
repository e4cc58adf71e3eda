package modules

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/menta2k/image-pipeline/pkg/imageset"
	"github.com/menta2k/image-pipeline/pkg/log"
	"github.com/menta2k/image-pipeline/pkg/measure"
	"github.com/menta2k/image-pipeline/pkg/pipeline"
	"github.com/menta2k/image-pipeline/pkg/preferences"
	"github.com/menta2k/image-pipeline/pkg/setting"

	"github.com/menta2k/image-pipeline/internal/fileutil"
)

// LoadImages builds the run's image sets from a directory of files.
//
// Each entry pairs a file-matching regular expression with an image name.
// Before the first cycle the folder is listed, every entry filters the
// sorted listing, and position k across all entries becomes image set k+1
// (order-based matching), so all entries must match the same number of
// files. Named capture groups in a pattern turn into Metadata_<group>
// measurements for the matching cycle.
type LoadImages struct {
	dirChoice *setting.Choice
	customDir *setting.Text
	entries   []*channelEntry
	addButton *setting.Action

	root    string
	matches [][]string
}

type channelEntry struct {
	key     uuid.UUID
	pattern *setting.Text
	image   *setting.ImageName
	remove  *setting.Action
}

// NewLoadImages creates the module with one channel entry.
func NewLoadImages() *LoadImages {
	m := &LoadImages{
		dirChoice: setting.NewChoice("Which folder contains the image files?",
			[]string{DirDefaultImage, DirCustom}),
		customDir: setting.NewText("What is the name of the folder containing the image files?", "."),
	}
	m.addEntry()
	m.addButton = setting.NewAction("Add another channel", "Add", func() {
		m.addEntry()
	})
	return m
}

func (m *LoadImages) addEntry() {
	key := uuid.New()
	entry := &channelEntry{
		key: key,
		pattern: setting.NewText("What pattern matches the files for this channel?", `.*\.tif`).
			WithDoc("A regular expression matched against each file in the folder. Named groups like (?P<Plate>.+) become Metadata_<name> measurements."),
		image: setting.NewImageName("What do you want to call these images?", "OrigBlue"),
	}
	entry.remove = setting.NewAction("Remove the above channel", "Remove", func() {
		m.removeEntry(key)
	})
	m.entries = append(m.entries, entry)
}

func (m *LoadImages) removeEntry(key uuid.UUID) {
	for i, entry := range m.entries {
		if entry.key == key {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return
		}
	}
}

// Name implements pipeline.Module.
func (m *LoadImages) Name() string { return "LoadImages" }

// Category implements pipeline.Module.
func (m *LoadImages) Category() string { return "File Processing" }

// Revision implements pipeline.Module.
func (m *LoadImages) Revision() int { return 1 }

// Settings returns the stored settings: folder choice, custom folder, then a
// (pattern, image name) pair per channel.
func (m *LoadImages) Settings() []setting.Setting {
	result := []setting.Setting{m.dirChoice, m.customDir}
	for _, entry := range m.entries {
		result = append(result, entry.pattern, entry.image)
	}
	return result
}

// VisibleSettings hides the custom folder unless the custom choice is active.
func (m *LoadImages) VisibleSettings() []setting.Setting {
	result := []setting.Setting{m.dirChoice}
	if m.dirChoice.Is(DirCustom) {
		result = append(result, m.customDir)
	}
	for _, entry := range m.entries {
		result = append(result, entry.pattern, entry.image, entry.remove)
	}
	result = append(result, m.addButton)
	return result
}

// PrepareSettings resizes the channel list to (len(values)-2)/2 entries.
func (m *LoadImages) PrepareSettings(values []string) error {
	count := (len(values) - 2) / 2
	for len(m.entries) > count {
		m.removeEntry(m.entries[0].key)
	}
	for len(m.entries) < count {
		m.addEntry()
	}
	return nil
}

// BaseDirectory resolves the folder the channels are matched in.
func (m *LoadImages) BaseDirectory() string {
	if m.dirChoice.Is(DirDefaultImage) {
		return preferences.DefaultImageDirectory()
	}
	return resolveCustomDirectory(m.customDir.Text())
}

// PrepareRun lists the folder, matches every channel's pattern against the
// sorted listing and creates one image set per matched position. Metadata
// from named capture groups is recorded for each set.
func (m *LoadImages) PrepareRun(ws *pipeline.Workspace) error {
	m.root = m.BaseDirectory()
	files, err := fileutil.ListImageFiles(ws.FS, m.root)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", m.root, err)
	}

	m.matches = make([][]string, len(m.entries))
	regexps := make([]*regexp.Regexp, len(m.entries))
	for i, entry := range m.entries {
		re, err := regexp.Compile(entry.pattern.Text())
		if err != nil {
			return fmt.Errorf("channel %q: bad pattern: %w", entry.image.Text(), err)
		}
		regexps[i] = re

		for _, file := range files {
			if re.MatchString(file) {
				m.matches[i] = append(m.matches[i], file)
			}
		}
		if len(m.matches[i]) == 0 {
			return fmt.Errorf("channel %q: pattern %q matched no files in %s", entry.image.Text(), entry.pattern.Text(), m.root)
		}
		if len(m.matches[i]) != len(m.matches[0]) {
			return fmt.Errorf("channel %q matched %d files, channel %q matched %d; counts must agree for order-based matching",
				entry.image.Text(), len(m.matches[i]), m.entries[0].image.Text(), len(m.matches[0]))
		}
	}

	for k := range m.matches[0] {
		set := ws.List.Set(k + 1)
		for i, re := range regexps {
			groups := re.FindStringSubmatch(m.matches[i][k])
			for gi, name := range re.SubexpNames() {
				if gi == 0 || name == "" || gi >= len(groups) {
					continue
				}
				set.Keys[name] = groups[gi]
				ws.Measurements.AddForSet(k+1, measure.MetadataPrefix+name, groups[gi])
			}
		}
	}
	log.Info("prepared image sets", "module", m.Name(), "dir", m.root, "cycles", len(m.matches[0]), "channels", len(m.entries))
	return nil
}

// Run registers this cycle's file for every channel and records the
// bookkeeping measurements.
func (m *LoadImages) Run(ws *pipeline.Workspace) error {
	n := ws.Set.Number
	statistics := [][2]string{{"Image name", "File"}}
	for i, entry := range m.entries {
		if m.matches == nil || i >= len(m.matches) || n > len(m.matches[i]) {
			return fmt.Errorf("cycle %d has no file for channel %q", n, entry.image.Text())
		}
		fileName := m.matches[i][n-1]
		imageName := entry.image.Text()

		ws.Set.AddProvider(imageset.NewFileProvider(ws.FS, imageName, m.root, fileName))
		ws.Measurements.Add(measure.FileNamePrefix+imageName, fileName)
		ws.Measurements.Add(measure.PathNamePrefix+imageName, m.root)
		statistics = append(statistics, [2]string{imageName, fileName})
	}

	ws.Display(fmt.Sprintf("Load images: image set #%d", n), statistics)
	return nil
}
