package domain

// KeyPrefix namespaces every key this service writes to the key-value store,
// so one instance can share a store with other tenants.
const KeyPrefix = "ycatlas:"
