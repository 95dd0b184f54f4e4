package model

import "time"

// User is the slice of a `users` row the booking core needs: where to send
// the confirmation and whether the user opted into promotional mail.
// Profiles are edited elsewhere; here they are read-only.
//
// Fields:
//  ID            : primary key identifier of the user.
//  Email         : unique email address, confirmation recipient.
//  FirstName     : used to greet the user in mails.
//  BillingAddress: printed on the receipt.
//  Role          : CUSTOMER or ADMIN.
//  Subscribed    : receives promotion blasts when true.
type User struct {
    ID             uint64    // users.id
    Email          string    // users.email
    FirstName      string    // users.first_name
    BillingAddress string    // users.billing_address
    Role           string    // users.role
    Subscribed     bool      // users.subscribed
    CreatedAt      time.Time // users.created_at
}

const (
    RoleCustomer = "CUSTOMER"
    RoleAdmin    = "ADMIN"
)
