package schema

// MappingVersion is stored in the index _meta.
// Bump major for changes that need a reindex (analysis, similarity, field
// types), minor for added fields.
const MappingVersion = "1.0.0"
