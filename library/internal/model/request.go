package model

import "time"

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1,max=50"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AddBookRequest struct {
	Title    string `json:"title" validate:"required,max=255"`
	Author   string `json:"author" validate:"required,max=255"`
	ISBN     string `json:"isbn" validate:"required,max=32"`
	Quantity int    `json:"quantity" validate:"min=1"`
}

type UpdateBookRequest struct {
	Title     string `json:"title" validate:"required,max=255"`
	Author    string `json:"author" validate:"required,max=255"`
	ISBN      string `json:"isbn" validate:"required,max=32"`
	AddCopies int    `json:"addCopies" validate:"gte=0"`
}

type CreateBorrowingRequest struct {
	BookID     string     `json:"bookId" validate:"required"`
	BorrowedAt *time.Time `json:"borrowedAt" validate:"required"`
}

type ReturnBorrowingRequest struct {
	BookID     string       `json:"bookId" validate:"required"`
	ReturnedAt *time.Time   `json:"returnedAt"`
	Status     ReturnStatus `json:"status" validate:"required,oneof=RETURNED LOST"`
}

type PageRequest struct {
	Search string
	Page   int
	Limit  int
}
