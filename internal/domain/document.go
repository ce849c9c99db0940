package domain

import (
	"github.com/petabencana/cap-feed-service/internal/xmltree"
)

// XML namespaces of the two document layers.
const (
	AtomNamespace = "http://www.w3.org/2005/Atom"
	CAPNamespace  = "urn:oasis:names:tc:emergency:cap:1.2"
)

// Node builds the Atom feed element with one CAP alert per entry.
func (f Feed) Node() xmltree.Node {
	root := xmltree.Element("feed",
		xmltree.Text("id", f.ID),
		xmltree.Text("title", f.Title),
		xmltree.Text("updated", f.Updated),
		xmltree.Element("author",
			xmltree.Text("name", f.Author.Name),
			xmltree.Text("uri", f.Author.URI),
		),
	).WithAttr("xmlns", AtomNamespace)

	for _, e := range f.Entries {
		root = root.Append(e.Node())
	}
	return root
}

// Node builds the Atom entry element.
func (e FeedEntry) Node() xmltree.Node {
	return xmltree.Element("entry",
		xmltree.Text("id", e.ID),
		xmltree.Text("title", e.Title),
		xmltree.Text("updated", e.Updated),
		xmltree.Element("content", e.Content.Node()).WithAttr("type", "text/xml"),
	)
}

// Node builds the CAP alert element.
func (a Alert) Node() xmltree.Node {
	return xmltree.Element("alert",
		xmltree.Text("identifier", a.Identifier),
		xmltree.Text("sender", a.Sender),
		xmltree.Text("sent", a.Sent),
		xmltree.Text("status", a.Status),
		xmltree.Text("msgType", a.MsgType),
		xmltree.Text("scope", a.Scope),
		a.Info.Node(),
	).WithAttr("xmlns", CAPNamespace)
}

// Node builds the CAP info element. Optional elements with no value are
// omitted.
func (i Info) Node() xmltree.Node {
	n := xmltree.Element("info",
		xmltree.Text("category", i.Category),
		xmltree.Text("event", i.Event),
		xmltree.Text("urgency", i.Urgency),
		xmltree.Text("severity", i.Severity.String()),
		xmltree.Text("certainty", i.Certainty),
		xmltree.Text("expires", i.Expires),
		xmltree.Text("senderName", i.SenderName),
		xmltree.Text("headline", i.Headline),
		xmltree.Text("description", i.Description),
	)
	if i.Web != "" {
		n = n.Append(xmltree.Text("web", i.Web))
	}
	for _, p := range i.Parameters {
		n = n.Append(xmltree.Element("parameter",
			xmltree.Text("valueName", p.Name),
			xmltree.Text("value", p.Value),
		))
	}
	return n.Append(i.Area.Node())
}

// Node builds the CAP area element.
func (a Area) Node() xmltree.Node {
	n := xmltree.Element("area")
	if a.AreaDesc != "" {
		n = n.Append(xmltree.Text("areaDesc", a.AreaDesc))
	}
	for _, p := range a.Polygons {
		n = n.Append(xmltree.Text("polygon", p))
	}
	if a.Circle != "" {
		n = n.Append(xmltree.Text("circle", a.Circle))
	}
	return n
}

// Render encodes the feed as a UTF-8 XML document.
func (f Feed) Render() (string, error) {
	return xmltree.RenderString(f.Node())
}

// Document is a rendered feed together with what went into it.
type Document struct {
	Kind    Kind
	XML     []byte
	Updated string
	Entries int
	Skipped []Skip
}
