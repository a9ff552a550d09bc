// Package paths resolves the fixed working-directory roles under a data root.
//
// A Registry is an immutable value built once from configuration and passed
// to every component that reads or writes stage artifacts.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Role names a working-directory subtree.
type Role string

const (
	RoleAudio      Role = "audio"
	RoleTranscript Role = "transcript"
	RoleChapter    Role = "chapter"
	RoleVideo      Role = "video"
	RoleFrame      Role = "frame"
	RoleSubtitle   Role = "subtitle"
	RoleShort      Role = "short"
)

// Roles lists every role in creation order.
var Roles = []Role{RoleAudio, RoleTranscript, RoleChapter, RoleVideo, RoleFrame, RoleSubtitle, RoleShort}

const (
	// KeepMarker suppresses workspace cleanup when present in the data root.
	KeepMarker = "keep.lock"
	// RunLock is held by the process driving a run.
	RunLock = ".reelcut.lock"
	// StateDB is the stage-status database name.
	StateDB = "reelcut.db"
)

// Registry maps roles to directories beneath Root.
type Registry struct {
	root string
}

// New returns a registry rooted at root. The root is cleaned but not created.
func New(root string) Registry {
	return Registry{root: filepath.Clean(root)}
}

// Root returns the data directory.
func (r Registry) Root() string { return r.root }

// Dir returns the directory for role without touching the filesystem.
func (r Registry) Dir(role Role) string {
	return filepath.Join(r.root, string(role))
}

// Ensure creates the directory for role and returns it.
func (r Registry) Ensure(role Role) (string, error) {
	dir := r.Dir(role)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s directory: %w", role, err)
	}
	return dir, nil
}

// EnsureAll creates every role directory.
func (r Registry) EnsureAll() error {
	for _, role := range Roles {
		if _, err := r.Ensure(role); err != nil {
			return err
		}
	}
	return nil
}

func (r Registry) KeepMarkerPath() string { return filepath.Join(r.root, KeepMarker) }

func (r Registry) RunLockPath() string { return filepath.Join(r.root, RunLock) }

func (r Registry) StateDBPath() string { return filepath.Join(r.root, StateDB) }

// Audio returns the downloaded audio path for a media id.
func (r Registry) Audio(id string) string {
	return filepath.Join(r.Dir(RoleAudio), id+".mp3")
}

// SentenceTranscript and WordTranscript return transcript document paths.
func (r Registry) SentenceTranscript(stem string) string {
	return filepath.Join(r.Dir(RoleTranscript), stem+".sentence.json")
}

func (r Registry) WordTranscript(stem string) string {
	return filepath.Join(r.Dir(RoleTranscript), stem+".word.json")
}

// Chapters returns the chapter document path for a stem.
func (r Registry) Chapters(stem string) string {
	return filepath.Join(r.Dir(RoleChapter), stem+".json")
}

// Video returns the downloaded video-only path for a media id.
func (r Registry) Video(id string) string {
	return filepath.Join(r.Dir(RoleVideo), id+".mp4")
}

// Merged returns the muxed source video path.
func (r Registry) Merged(id string) string {
	return filepath.Join(r.Dir(RoleVideo), id+".merged.mp4")
}

// Subject returns the cached subject-detection result path.
func (r Registry) Subject(id string) string {
	return filepath.Join(r.Dir(RoleFrame), id+".subject.json")
}

// Frame returns the path of the n-th sampled frame (1-based).
func (r Registry) Frame(id string, n int) string {
	return filepath.Join(r.Dir(RoleFrame), id+"_"+strconv.Itoa(n)+".png")
}

// ClipStem names the artifacts of chapter index i.
func ClipStem(stem string, i int) string {
	return stem + "_" + strconv.Itoa(i)
}

// Clip groups the canonical per-chapter artifact paths.
type Clip struct {
	Subtitle   string
	Title      string
	Horizontal string
	Vertical   string
	Final      string
}

// Clip returns the artifact paths for chapter index i of stem.
func (r Registry) Clip(stem string, i int) Clip {
	name := ClipStem(stem, i)
	return Clip{
		Subtitle:   filepath.Join(r.Dir(RoleSubtitle), name+".ass"),
		Title:      filepath.Join(r.Dir(RoleShort), name+".txt"),
		Horizontal: filepath.Join(r.Dir(RoleVideo), name+"_horizontal.mp4"),
		Vertical:   filepath.Join(r.Dir(RoleVideo), name+".mp4"),
		Final:      filepath.Join(r.Dir(RoleShort), name+".mp4"),
	}
}
