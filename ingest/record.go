package ingest

// RepoGlobalCheck is the synthetic file name representing the repository as
// a whole. The record is published with the corpus so repo-level rules have
// something to attach results to, but it is never scanned as a real file.
const RepoGlobalCheck = "REPO_GLOBAL_CHECK"

// FileRecord is one ingested file as seen by analysis facts. Field names
// follow the published fact schema, so JSON tags are camelCase.
type FileRecord struct {
	FileName     string            `json:"fileName"`
	FilePath     string            `json:"filePath"`
	FileContent  string            `json:"fileContent,omitempty"`
	Size         int64             `json:"size,omitempty"`
	ModTime      string            `json:"modTime,omitempty"`
	CreationTime string            `json:"creationTime,omitempty"`
	AccessTime   string            `json:"accessTime,omitempty"`
	Digest       string            `json:"digest,omitempty"`
	Hashes       map[string]string `json:"hashes,omitempty"`
}

// IsSentinel reports whether the record is the synthetic repo-level record.
func (r FileRecord) IsSentinel() bool {
	return r.FileName == RepoGlobalCheck
}

// SentinelRecord returns the synthetic repo-level record appended to every
// corpus.
func SentinelRecord() FileRecord {
	return FileRecord{
		FileName: RepoGlobalCheck,
		FilePath: RepoGlobalCheck,
	}
}
