// Package album manages the record catalog.
//
// Every album carries an owner: the user who created it. Ownership is set
// once and never changes; albums created before ownership was tracked have
// no owner and can only be changed by an ADMIN.
//
// Service enforces the access rules from the auth package in a fixed order
// for update and delete: the caller's role is checked first, then the album
// must exist, then ownership is checked. A USER therefore receives 403 for
// any update or delete, whether or not the album exists.
package album
