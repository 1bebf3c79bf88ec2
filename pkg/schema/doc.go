// Package schema defines the entity shape definitions that get attached to
// tenant database connections.
//
// A Schema names an entity type, its backing collection, an optional
// $jsonSchema validator and its secondary indexes. A Set is the fixed,
// immutable collection of schemas the application loads once at process
// start; it is shared read-only by every tenant connection.
//
// # Usage
//
//	users := schema.Schema{
//		Name:       "User",
//		Collection: "users",
//		Indexes: []schema.Index{
//			{Name: "email_unique", Keys: bson.D{{Key: "email", Value: 1}}, Unique: true},
//		},
//	}
//
//	set := schema.MustNewSet(users)
//	s, ok := set.Lookup("User")
package schema
