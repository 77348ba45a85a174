package repository

// Tx is an opaque transaction handle passed back into repository methods by
// the unit of work. The postgres implementation asserts it to its own DB
// interface; test fakes carry whatever they need.
type Tx any
