package dlna

import (
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/djherbis/times"
	"github.com/google/uuid"

	"github.com/udlna/udlna/media"
	"github.com/udlna/udlna/media/metadata"
	"github.com/udlna/udlna/soap"
)

const (
	rootID      = "0"
	rootPID     = "-1"
	classFolder = "object.container.storageFolder"
	classVideo  = "object.item.videoItem"
	classAudio  = "object.item.audioItem.musicTrack"
	classImage  = "object.item.imageItem.photo"
)

// didlLite is the DIDL-Lite document wrapping Browse results. All four
// namespaces are mandatory — clients silently reject a response
// missing xmlns:dlna.
type didlLite struct {
	XMLName    xml.Name    `xml:"DIDL-Lite"`
	Xmlns      string      `xml:"xmlns,attr"`
	XmlnsDC    string      `xml:"xmlns:dc,attr"`
	XmlnsUPnP  string      `xml:"xmlns:upnp,attr"`
	XmlnsDLNA  string      `xml:"xmlns:dlna,attr"`
	Containers []container `xml:"container,omitempty"`
	Items      []didlItem  `xml:"item,omitempty"`
}

func newDIDL() didlLite {
	return didlLite{
		Xmlns:     "urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/",
		XmlnsDC:   "http://purl.org/dc/elements/1.1/",
		XmlnsUPnP: "urn:schemas-upnp-org:metadata-1-0/upnp/",
		XmlnsDLNA: "urn:schemas-dlna-org:metadata-1-0/",
	}
}

type container struct {
	ID         string `xml:"id,attr"`
	ParentID   string `xml:"parentID,attr"`
	Restricted string `xml:"restricted,attr"`
	ChildCount int    `xml:"childCount,attr"`
	Title      string `xml:"dc:title"`
	Class      string `xml:"upnp:class"`
}

type didlItem struct {
	ID         string `xml:"id,attr"`
	ParentID   string `xml:"parentID,attr"`
	Restricted string `xml:"restricted,attr"`
	Title      string `xml:"dc:title"`
	Class      string `xml:"upnp:class"`
	Date       string `xml:"dc:date"`
	Res        res    `xml:"res"`
}

type res struct {
	ProtocolInfo string `xml:"protocolInfo,attr"`
	Size         uint64 `xml:"size,attr"`
	Duration     string `xml:"duration,attr,omitempty"`
	Resolution   string `xml:"resolution,attr,omitempty"`
	Bitrate      uint32 `xml:"bitrate,attr,omitempty"`
	URL          string `xml:",chardata"`
}

// containerEntry names one of the four virtual top-level containers.
type containerEntry struct {
	name string
	kind media.Kind
	all  bool
}

var containerEntries = []containerEntry{
	{name: soap.ContainerVideos, kind: media.KindVideo},
	{name: soap.ContainerMusic, kind: media.KindAudio},
	{name: soap.ContainerPhotos, kind: media.KindImage},
	{name: soap.ContainerAllMedia, all: true},
}

// containerID returns the stable UUID string for one of the four
// virtual containers.
func containerID(name string) string {
	return metadata.ContainerUUID(name).String()
}

// handleBrowse implements the Browse action: ObjectID "0" lists the
// four containers; a container UUID lists its member items; an item
// UUID under BrowseMetadata returns that single item. Returns the
// inner response XML, or a fault.
func (r *Router) handleBrowse(body []byte, host string) (string, *soap.UPnPError) {
	objectID, ok := soap.ExtractParam(string(body), "ObjectID")
	if !ok || objectID == "" {
		return "", soap.NewFault(402, "InvalidArgs")
	}
	browseFlag, ok := soap.ExtractParam(string(body), "BrowseFlag")
	if !ok || (browseFlag != "BrowseDirectChildren" && browseFlag != "BrowseMetadata") {
		return "", soap.NewFault(402, "InvalidArgs")
	}
	startingIndex := parseIntParam(string(body), "StartingIndex", 0)
	requestedCount := parseIntParam(string(body), "RequestedCount", 0)

	if host == "" {
		host = "localhost:8200"
	}

	if objectID == rootID {
		if browseFlag == "BrowseMetadata" {
			return r.metadataForRoot(), nil
		}
		return r.browseRoot(startingIndex, requestedCount)
	}

	if entry, ok := containerByID(objectID); ok {
		if browseFlag == "BrowseMetadata" {
			return r.metadataForContainer(entry, objectID), nil
		}
		return r.browseContainer(entry, objectID, startingIndex, requestedCount, host)
	}

	return r.browseItem(objectID, host)
}

// metadataForRoot answers BrowseMetadata("0") with the root container
// element itself (parentID "-1" per the object model).
func (r *Router) metadataForRoot() string {
	didl := newDIDL()
	didl.Containers = []container{{
		ID:         rootID,
		ParentID:   rootPID,
		Restricted: "1",
		ChildCount: len(containerEntries),
		Title:      "Root",
		Class:      classFolder,
	}}
	return browseResult(didl, 1, 1)
}

func (r *Router) metadataForContainer(entry containerEntry, objectID string) string {
	didl := newDIDL()
	didl.Containers = []container{{
		ID:         objectID,
		ParentID:   rootID,
		Restricted: "1",
		ChildCount: r.countForEntry(entry),
		Title:      entry.name,
		Class:      classFolder,
	}}
	return browseResult(didl, 1, 1)
}

func parseIntParam(body, name string, def int) int {
	v, ok := soap.ExtractParam(body, name)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func containerByID(objectID string) (containerEntry, bool) {
	for _, entry := range containerEntries {
		if containerID(entry.name) == objectID {
			return entry, true
		}
	}
	return containerEntry{}, false
}

func (r *Router) browseRoot(start, count int) (string, *soap.UPnPError) {
	all := make([]container, 0, len(containerEntries))
	for _, entry := range containerEntries {
		all = append(all, container{
			ID:         containerID(entry.name),
			ParentID:   rootID,
			Restricted: "1",
			ChildCount: r.countForEntry(entry),
			Title:      entry.name,
			Class:      classFolder,
		})
	}
	page := soap.Paginate(all, start, count)

	didl := newDIDL()
	didl.Containers = page
	return browseResult(didl, len(page), len(all)), nil
}

func (r *Router) countForEntry(entry containerEntry) int {
	if entry.all {
		return r.library.Len()
	}
	return len(r.library.ByKind(entry.kind))
}

func (r *Router) browseContainer(entry containerEntry, objectID string, start, count int, host string) (string, *soap.UPnPError) {
	var items []media.Item
	if entry.all {
		items = r.library.Snapshot()
	} else {
		items = r.library.ByKind(entry.kind)
	}
	page := soap.Paginate(items, start, count)

	didl := newDIDL()
	didl.Items = make([]didlItem, 0, len(page))
	for _, it := range page {
		didl.Items = append(didl.Items, itemToDIDL(it, objectID, host))
	}
	return browseResult(didl, len(page), len(items)), nil
}

func (r *Router) browseItem(objectID string, host string) (string, *soap.UPnPError) {
	id, err := uuid.Parse(objectID)
	if err != nil {
		return "", soap.NewFault(701, "No such object")
	}
	item, ok := r.library.Find(id)
	if !ok {
		return "", soap.NewFault(701, "No such object")
	}

	didl := newDIDL()
	didl.Items = []didlItem{itemToDIDL(item, parentForKind(item.Kind), host)}
	return browseResult(didl, 1, 1), nil
}

func parentForKind(kind media.Kind) string {
	switch kind {
	case media.KindVideo:
		return containerID(soap.ContainerVideos)
	case media.KindAudio:
		return containerID(soap.ContainerMusic)
	case media.KindImage:
		return containerID(soap.ContainerPhotos)
	default:
		return containerID(soap.ContainerAllMedia)
	}
}

func upnpClass(kind media.Kind) string {
	switch kind {
	case media.KindVideo:
		return classVideo
	case media.KindImage:
		return classImage
	default:
		return classAudio
	}
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func birthDate(path string) string {
	t, err := times.Stat(path)
	if err != nil {
		return "1970-01-01"
	}
	return t.ModTime().UTC().Format("2006-01-02")
}

func itemToDIDL(item media.Item, parentID string, host string) didlItem {
	resElem := res{
		ProtocolInfo: soap.BuildProtocolInfo(item.MIME, item.Meta.DLNAProfile),
		Size:         item.FileSize,
		URL:          fmt.Sprintf("http://%s/media/%s", host, item.ID),
	}
	if item.Meta.Duration != nil {
		resElem.Duration = *item.Meta.Duration
	}
	if item.Meta.Resolution != nil {
		resElem.Resolution = *item.Meta.Resolution
	}
	if item.Meta.Bitrate != nil {
		resElem.Bitrate = *item.Meta.Bitrate
	}

	return didlItem{
		ID:         item.ID.String(),
		ParentID:   parentID,
		Restricted: "1",
		Title:      fileStem(item.Path),
		Class:      upnpClass(item.Kind),
		Date:       birthDate(item.Path),
		Res:        resElem,
	}
}

func browseResult(didl didlLite, numberReturned, totalMatches int) string {
	raw, err := xml.Marshal(didl)
	if err != nil {
		raw = []byte{}
	}
	var b strings.Builder
	b.WriteString("<Result>")
	b.WriteString(soap.EscapeXML(string(raw)))
	b.WriteString("</Result>")
	fmt.Fprintf(&b, "<NumberReturned>%d</NumberReturned>", numberReturned)
	fmt.Fprintf(&b, "<TotalMatches>%d</TotalMatches>", totalMatches)
	b.WriteString("<UpdateID>1</UpdateID>")
	return b.String()
}
