// Package profiles lists the user profiles on the machine and the top level
// of each profile's default folders.
package profiles

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ancients-collective/bastion/internal/logging"
	"github.com/ancients-collective/bastion/internal/sweep"
)

// ErrNoProfiles is returned when the profile root holds no real users.
var ErrNoProfiles = errors.New("no user profiles found")

// DefaultFolders are browsed in every profile, in this order.
var DefaultFolders = []string{"Desktop", "Documents", "Downloads", "Pictures", "Music", "Videos"}

// oneDriveDocuments is browsed after DefaultFolders when present.
var oneDriveDocuments = filepath.Join("OneDrive", "Documents")

// Kind distinguishes folders from files in a listing.
type Kind string

const (
	KindFolder Kind = "Folder"
	KindFile   Kind = "File"
)

// Entry is one item directly inside a default folder.
type Entry struct {
	Kind Kind
	// Folder is the default folder the entry was found in ("Downloads").
	Folder     string
	Name       string
	Path       string
	Size       int64
	Modified   time.Time
	Attributes string
}

// Listing is the browse result for one profile.
type Listing struct {
	User    string
	Path    string
	Entries []Entry
	Files   int
	Folders int
}

// Explorer reads profiles under a profile root such as C:\Users.
type Explorer struct {
	root string
	log  *logrus.Entry
}

// NewExplorer creates an Explorer for root. A nil logger discards output.
func NewExplorer(root string, logger *logging.Logger) *Explorer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Explorer{root: root, log: logger.WithComponent("profiles")}
}

// Root returns the profile root.
func (e *Explorer) Root() string {
	return e.root
}

// IsSystemProfile reports whether a profile directory belongs to the OS
// rather than a person: Public, Default, "Default User" and Default.*.
func IsSystemProfile(name string) bool {
	switch {
	case strings.EqualFold(name, "Public"),
		strings.EqualFold(name, "Default"),
		strings.EqualFold(name, "Default User"):
		return true
	}
	return len(name) >= len("Default.") && strings.EqualFold(name[:len("Default.")], "Default.")
}

// Users returns the real user profile names, sorted.
func (e *Explorer) Users() ([]string, error) {
	entries, err := os.ReadDir(e.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile root %q: %w", e.root, err)
	}

	var users []string
	for _, entry := range entries {
		if !entry.IsDir() || IsSystemProfile(entry.Name()) {
			continue
		}
		users = append(users, entry.Name())
	}
	if len(users) == 0 {
		return nil, ErrNoProfiles
	}
	sort.Strings(users)
	return users, nil
}

// Browse lists folders then files directly inside each default folder of
// the user's profile. Missing or unreadable folders and entries are skipped.
func (e *Explorer) Browse(user string) (*Listing, error) {
	if user == "" || user != filepath.Base(user) || user == "." || user == ".." {
		return nil, fmt.Errorf("invalid profile name %q", user)
	}
	home := filepath.Join(e.root, user)
	info, err := os.Stat(home)
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", user, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("profile %q is not a directory", user)
	}

	listing := &Listing{User: user, Path: home}
	folders := append(append([]string(nil), DefaultFolders...), oneDriveDocuments)
	for _, folder := range folders {
		e.scanFolder(listing, filepath.Join(home, folder), folder)
	}

	e.log.WithFields(logrus.Fields{
		"user":    user,
		"files":   listing.Files,
		"folders": listing.Folders,
	}).Debug("profile browsed")
	return listing, nil
}

func (e *Explorer) scanFolder(listing *Listing, dir, label string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			e.log.WithError(err).WithField("dir", dir).Debug("skipping folder")
		}
		return
	}

	var files []Entry
	for _, de := range entries {
		info, err := de.Info()
		if err != nil {
			continue
		}
		item := Entry{
			Folder:     label,
			Name:       de.Name(),
			Path:       filepath.Join(dir, de.Name()),
			Modified:   info.ModTime(),
			Attributes: sweep.AttributeLabel(info),
		}
		if de.IsDir() {
			item.Kind = KindFolder
			listing.Entries = append(listing.Entries, item)
			listing.Folders++
			continue
		}
		item.Kind = KindFile
		item.Size = info.Size()
		files = append(files, item)
	}
	listing.Entries = append(listing.Entries, files...)
	listing.Files += len(files)
}
