package model

import (
	"time"
)

const LoanPeriodDays = 14

type User struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Password  string    `json:"-" db:"password"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type UserBorrowedBook struct {
	BookID     string          `json:"bookId"`
	Title      string          `json:"title"`
	Author     string          `json:"author"`
	BorrowedAt time.Time       `json:"borrowedAt"`
	DueDate    time.Time       `json:"dueDate"`
	ReturnedAt *time.Time      `json:"returnedAt"`
	Status     BorrowingStatus `json:"status"`
}

type UserWithBorrowings struct {
	ID            string             `json:"id" db:"id"`
	Name          string             `json:"name" db:"name"`
	Email         string             `json:"email" db:"email"`
	CreatedAt     time.Time          `json:"createdAt" db:"created_at"`
	BorrowedBooks []UserBorrowedBook `json:"borrowedBooks" db:"borrowed_books"`
}

type ListUsers struct {
	Users      []UserWithBorrowings
	Pagination Pagination
}

type Book struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Author    string    `json:"author" db:"author"`
	ISBN      string    `json:"isbn" db:"isbn"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type BookRef struct {
	Title  string `json:"title" db:"title"`
	Author string `json:"author" db:"author"`
	ISBN   string `json:"isbn" db:"isbn"`
}

type ListBooks struct {
	Books      []Book
	Pagination Pagination
}

type BorrowingStatus string

const (
	StatusBorrowed BorrowingStatus = "BORROWED"
	StatusReturned BorrowingStatus = "RETURNED"
	StatusOverdue  BorrowingStatus = "OVERDUE"
	StatusLost     BorrowingStatus = "LOST"
)

// ReturnStatus is the closed set of statuses a loan may be closed with.
type ReturnStatus string

const (
	ReturnReturned ReturnStatus = ReturnStatus(StatusReturned)
	ReturnLost     ReturnStatus = ReturnStatus(StatusLost)
)

func (s ReturnStatus) Valid() bool {
	return s == ReturnReturned || s == ReturnLost
}

// Restocks reports whether closing with this status puts the copy back on the shelf.
func (s ReturnStatus) Restocks() bool {
	return s == ReturnReturned
}

func (s ReturnStatus) BorrowingStatus() BorrowingStatus {
	return BorrowingStatus(s)
}

type Borrowing struct {
	ID         string          `json:"id" db:"id"`
	UserID     string          `json:"userId" db:"user_id"`
	BookID     string          `json:"bookId" db:"book_id"`
	BorrowedAt time.Time       `json:"borrowedAt" db:"borrowed_at"`
	DueDate    time.Time       `json:"dueDate" db:"due_date"`
	ReturnedAt *time.Time      `json:"returnedAt" db:"returned_at"`
	Status     BorrowingStatus `json:"status" db:"status"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time       `json:"updatedAt" db:"updated_at"`
}

func DueDate(borrowedAt time.Time) time.Time {
	return borrowedAt.AddDate(0, 0, LoanPeriodDays)
}

// EffectiveStatus reports an open loan past its due date as OVERDUE.
func EffectiveStatus(status BorrowingStatus, dueDate time.Time, returnedAt *time.Time, now time.Time) BorrowingStatus {
	if status == StatusBorrowed && returnedAt == nil && now.After(dueDate) {
		return StatusOverdue
	}
	return status
}

type BorrowedBook struct {
	ID         string          `json:"id" db:"id"`
	Title      string          `json:"title" db:"title"`
	Author     string          `json:"author" db:"author"`
	ISBN       string          `json:"isbn" db:"isbn"`
	Quantity   int             `json:"quantity" db:"quantity"`
	BorrowedAt time.Time       `json:"borrowedAt" db:"borrowed_at"`
	DueDate    time.Time       `json:"dueDate" db:"due_date"`
	ReturnedAt *time.Time      `json:"returnedAt" db:"returned_at"`
	Status     BorrowingStatus `json:"status" db:"status"`
}

type CreatedBorrowing struct {
	ID         string    `json:"id"`
	DueDate    time.Time `json:"duedate"`
	BorrowedAt time.Time `json:"borrowedAt"`
	Book       BookRef   `json:"book"`
}

type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}
