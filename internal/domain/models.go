package domain

import (
	"fmt"
	"time"
)

// Product adalah entri katalog. Stock selalu turunan: jumlah stok semua varian.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Image       string    `json:"image"`
	Description string    `json:"description"`
	Stock       int       `json:"stock"`
	Variants    []Variant `json:"variants"`
}

// Variant adalah paket yang bisa dibeli (durasi, nominal, tier).
// Stock bisa negatif kalau data lama pernah oversell.
type Variant struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"product_id"`
	Title       string `json:"title"`
	Price       int64  `json:"price"`
	Stock       int    `json:"stock"`
	Description string `json:"description"`
}

// ProductFields adalah field yang boleh ditulis admin. Stock sengaja tidak ada.
type ProductFields struct {
	Name        string
	Category    string
	Image       string
	Description string
}

type VariantFields struct {
	Title       string
	Price       int64
	Stock       int
	Description string
}

type Order struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	VariantID int64     `json:"variant_id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact"`
	Method    string    `json:"method"`
	Total     int64     `json:"total"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// OrderDetail adalah view order + label produk/varian yang di-join saat baca.
// Label bisa kosong kalau produk/varian sudah dihapus (order tidak punya FK).
type OrderDetail struct {
	Order
	FormattedID  string `json:"formattedId"`
	ProductName  string `json:"product_name"`
	VariantTitle string `json:"variant_title"`
	VariantPrice int64  `json:"variant_price"`
}

// NewOrder input untuk checkout.
type NewOrder struct {
	ProductID int64
	VariantID int64
	Name      string
	Contact   string
	Method    string
	Total     int64
}

// FormatOrderID: id tampilan, tidak disimpan.
func FormatOrderID(id int64) string {
	return fmt.Sprintf("NV%05d", id)
}
