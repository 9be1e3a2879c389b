// Package archive extracts and builds compressed containers under the
// Archives export category.
//
// Format choice is a closed enumeration. ZIP is fully supported; 7z and RAR
// are recognised so callers get an explicit NotImplemented (or
// UnsupportedFormat for RAR creation) instead of a silent empty success.
//
// Extraction validates every entry name before writing anything: absolute
// names, parent-directory segments, and targets that fall outside the
// extraction root are rejected through fileutil.IsWithin. Encrypted entries
// are refused with UnsupportedOrEncrypted because the ZIP engine cannot
// decrypt them.
package archive
