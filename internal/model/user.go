package model

import "time"

// Token roles.  Customer and admin principals live in separate tables and
// are told apart by the role claim of their access token.
const (
	RoleCustomer = "customer" // storefront user (users table)
	RoleAdmin    = "admin"    // back-office user (admins table)
)

// User represents a storefront customer as stored in the `users` table.
// Email is stored lower-cased.  Phone is the normalized phone number and
// is empty when the column is NULL.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name.
//  Email        – unique, case-insensitive email address.
//  PasswordHash – bcrypt hashed password, never serialized.
//  Phone        – unique normalized phone, optional.
//  Address      – default shipping address.
//  Avatar       – avatar image URL.
type User struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	Avatar       string    `json:"avatar"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserSummary is the admin view of a customer.
type UserSummary struct {
	User
	OrdersCount int  `json:"orders_count"`
	Blocked     bool `json:"blocked"`
}

// Admin represents a row in the `admins` table.  Role is the back-office
// grade (admin, super_admin), not the token role.
type Admin struct {
	ID           uint64    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
