package embedding

import "swissarmyhammer/internal/logging"

// =============================================================================
// TASK TYPE SELECTION
// =============================================================================

// ContentType distinguishes the two kinds of text this system ever embeds:
// source code chunks during indexing (§4.2/§4.5) and search queries
// (§4.6). There is no conversation, fact, or classification content here,
// so the taxonomy stays narrow rather than speculatively covering content
// this system never produces.
type ContentType string

const (
	ContentTypeCode  ContentType = "code"  // a source code chunk being indexed or matched
	ContentTypeQuery ContentType = "query" // a user's search query text
)

// SelectTaskType picks the Gemini embedding task type for contentType.
// isQuery distinguishes embedding a chunk during indexing from embedding
// a query against it: Gemini's code-retrieval task types are asymmetric,
// using a different task type for the document side of a retrieval than
// for the query side of the same retrieval.
func SelectTaskType(contentType ContentType, isQuery bool) string {
	logging.EmbeddingDebug("SelectTaskType: content_type=%s, is_query=%v", contentType, isQuery)

	var taskType string
	switch contentType {
	case ContentTypeCode:
		if isQuery {
			taskType = "CODE_RETRIEVAL_QUERY"
		} else {
			taskType = "RETRIEVAL_DOCUMENT"
		}
	case ContentTypeQuery:
		taskType = "RETRIEVAL_QUERY"
	default:
		taskType = "SEMANTIC_SIMILARITY"
		logging.EmbeddingDebug("SelectTaskType: unknown content_type=%s, defaulting to SEMANTIC_SIMILARITY", contentType)
	}

	logging.EmbeddingDebug("SelectTaskType: selected task_type=%s", taskType)
	return taskType
}
