package domain

import "strings"

const upperhex = "0123456789ABCDEF"

// EncodeURI percent-encodes s the way ECMAScript encodeURI does: reserved URI
// delimiters survive, everything else outside the unreserved set is escaped
// as UTF-8 octets. net/url has no equivalent; PathEscape and QueryEscape both
// escape delimiters such as '?', '&' and '='.
func EncodeURI(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if keepInURI(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0f])
	}
	return b.String()
}

func keepInURI(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte(";,/?:@&=+$-_.!~*'()#", c) >= 0
}

// alertIdentifier joins the parts with '.', replaces spaces with underscores
// and URI-encodes the result.
func alertIdentifier(parts ...string) string {
	id := strings.Join(parts, ".")
	return EncodeURI(strings.ReplaceAll(id, " ", "_"))
}
