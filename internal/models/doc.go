// Package models defines the core domain models for roomledger.
//
// # Models
//
//   - Person: a roommate taking part in the ledger; exactly one is the current user
//   - Expense: a personal or shared expense paid by one person
//   - Budget: the monthly budget of the current user
//   - Snapshot: the complete persisted state of a ledger
//
// # Design Principles
//
// 1. **Closed enumerations**: Category and ExpenseType only accept the listed values
// 2. **Exact money**: amounts are decimal.Decimal, never float64
// 3. **Avoid circular references**: expenses reference people by ID string
// 4. **Stable wire layout**: JSON field names match the persisted record
//    (paidBy, sharedWith, date, isCurrentUser, studentId)
package models
