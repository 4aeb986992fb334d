package wp2mdx

import "github.com/alnah/go-wp2mdx/internal/pipeline"

// AuditMedia returns the upload references of an HTML body that manifest
// does not list, in document order. References outside the uploads
// directory are ignored.
func AuditMedia(content string, manifest *MediaManifest) []string {
	if manifest == nil {
		return nil
	}

	var missing []string
	for _, ref := range pipeline.MediaRefs(content) {
		if uploadPath(ref) == "" {
			continue
		}
		if !manifest.Has(ref) {
			missing = append(missing, ref)
		}
	}
	return missing
}
