package model

type Clinic struct {
	Base
	Name     string `db:"name" json:"name"`
	CNPJ     string `db:"cnpj" json:"cnpj"`
	Location string `db:"location" json:"location"`
	Status   string `db:"status" json:"status"`
}

type CreateClinicRequest struct {
	Name     string `json:"name" binding:"required,max=120"`
	CNPJ     string `json:"cnpj" binding:"required,max=20"`
	Location string `json:"location" binding:"required,max=200"`
}
