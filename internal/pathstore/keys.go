package pathstore

import "strings"

// Root is the key prefix for everything this service writes.
const Root = "docsect/documents"

// DocumentKey is the prefix of one published document.
func DocumentKey(docID string) string {
	return Root + "/" + docID
}

// MetaKey holds the document's title, outline and page numbers.
func MetaKey(docID string) string {
	return DocumentKey(docID) + "/meta"
}

// SectionKey holds one rendered section.
func SectionKey(docID, sectionID string) string {
	return DocumentKey(docID) + "/sections/" + sectionID
}

// DocIDFromKey extracts the document ID from any key under Root.
func DocIDFromKey(key string) string {
	rest, ok := strings.CutPrefix(key, Root+"/")
	if !ok {
		return ""
	}
	id, _, _ := strings.Cut(rest, "/")
	return id
}
