package domain

// KeyPrefix namespaces every backend key owned by this service.
const KeyPrefix = "propsearch:"

// IndexName is the search index over all transaction documents.
const IndexName = "propsearch-transactions"
