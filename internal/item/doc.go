// Package item provides the canonical record model for parsed conference
// announcements and the content fingerprint used for deduplication.
//
// Every source parser produces Items in this shape. The fingerprint is a
// deterministic SHA-256 over the normalized record fields, so that the same
// logical announcement always hashes to the same value regardless of
// extraction-order noise introduced by the source markup.
package item
