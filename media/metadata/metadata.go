// Package metadata derives stable identifiers and extracts lightweight
// metadata (duration, resolution, bitrate, DLNA profile) from media
// files by container/header inspection, never full transcoding.
package metadata

import (
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/udlna/udlna/log"
	"github.com/udlna/udlna/media"
)

var (
	machineNamespaceOnce sync.Once
	machineNamespace     uuid.UUID
)

// MachineNamespace returns the process-wide UUIDv5 namespace derived
// from this machine's identity, computed once on first use and cached
// for the process lifetime.
func MachineNamespace() uuid.UUID {
	machineNamespaceOnce.Do(func() {
		id, err := machineID()
		if err != nil || id == "" {
			id = "unknown"
		}
		machineNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte(id))
	})
	return machineNamespace
}

// machineID returns a best-effort stable identifier for this host.
// Falls back to the hostname, then "unknown", when no machine-id file
// is readable (grounded in the original's machine_uid::get() fallback
// chain — Go has no equivalent cross-platform crate in this pack, so
// the common /etc/machine-id path is read directly with a hostname
// fallback).
func machineID() (string, error) {
	if b, err := os.ReadFile("/etc/machine-id"); err == nil {
		return string(b), nil
	}
	if b, err := os.ReadFile("/var/lib/dbus/machine-id"); err == nil {
		return string(b), nil
	}
	return os.Hostname()
}

// ContainerUUID derives the stable identifier for one of the four
// virtual containers (Videos, Music, Photos, All Media).
func ContainerUUID(name string) uuid.UUID {
	return uuid.NewSHA1(MachineNamespace(), []byte(name))
}

// ItemID derives a MediaItem's stable identifier from the process
// machine namespace and its canonical path.
func ItemID(canonicalPath string) uuid.UUID {
	return uuid.NewSHA1(MachineNamespace(), []byte(canonicalPath))
}

// ServerUUID derives the device UDN from hostname and friendly name.
func ServerUUID(hostname, serverName string) uuid.UUID {
	seed := hostname + "\x00" + serverName
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(seed))
}

// FormatUPnPDuration renders a duration as the canonical UPnP string
// HH:MM:SS.mmm. totalSeconds must be < 360000 (100 hours) and
// 0 <= frac < 1 for the result to be meaningful; callers are expected
// to pass valid inputs from a successful probe.
func FormatUPnPDuration(totalSeconds int, frac float64) string {
	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	s := totalSeconds % 60
	ms := int(frac*1000 + 0.5)
	if ms >= 1000 {
		ms -= 1000
		s++
		if s >= 60 {
			s -= 60
			m++
			if m >= 60 {
				m -= 60
				h++
			}
		}
	}
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

// dlnaProfiles maps a handful of common MIME types to an interned DLNA
// profile tag. Absent from the map means no profile — the wire
// protocolInfo omits DLNA.ORG_PN entirely in that case.
var dlnaProfiles = map[string]string{
	"audio/mpeg": "MP3",
	"audio/mp4":  "AAC_ISO_320",
	"image/jpeg": "JPEG_LRG",
	"image/png":  "PNG_LRG",
}

// ProfileFor returns the DLNA profile tag for a MIME type, if known.
func ProfileFor(mimeType string) *string {
	if p, ok := dlnaProfiles[mimeType]; ok {
		return &p
	}
	return nil
}

// Extract probes a file and returns its Meta, or ok=false if nothing
// useful could be extracted — per the locked decision inherited from
// the reference implementation, a file that cannot be probed at all is
// skipped by the caller entirely rather than inserted with every field
// nil (see DESIGN.md).
func Extract(path string, kind media.Kind, mimeType string) (media.Meta, bool) {
	var meta media.Meta
	var ok bool
	switch kind {
	case media.KindAudio:
		meta, ok = extractAudio(path, mimeType)
	case media.KindVideo:
		meta, ok = extractVideo(path, mimeType)
	case media.KindImage:
		meta, ok = extractImage(path, mimeType)
	default:
		return media.Meta{}, false
	}
	if !ok {
		log.Debug("metadata extraction failed", "path", path, "kind", kind)
		return media.Meta{}, false
	}
	meta.DLNAProfile = ProfileFor(mimeType)
	return meta, true
}
