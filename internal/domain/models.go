package domain

type Category struct {
	ID          string `db:"id" json:"id" firestore:"-"`
	Name        string `db:"name" json:"name" firestore:"name"`
	Description string `db:"description" json:"description" firestore:"description"`
	Image       string `db:"image" json:"image" firestore:"image"`
}

type Banner struct {
	ID          string `db:"id" json:"id" firestore:"-"`
	Title       string `db:"title" json:"title" firestore:"title"`
	Description string `db:"description" json:"description" firestore:"description"`
	Image       string `db:"image" json:"image" firestore:"image"`
}

// Product keeps prices and stock as text, the way the catalog documents store them.
// Use Amount to read them.
type Product struct {
	ID             string `db:"id" json:"id" firestore:"-"`
	Name           string `db:"name" json:"name" firestore:"name"`
	Price          string `db:"price" json:"price" firestore:"price"`
	FinalPrice     string `db:"final_price" json:"finalPrice" firestore:"finalPrice"`
	Category       string `db:"category" json:"category" firestore:"category"`
	Description    string `db:"description" json:"description" firestore:"description"`
	AvailableUnits string `db:"available_units" json:"availableUnits" firestore:"availableUnits"`
	Image          string `db:"image" json:"image" firestore:"image"`
}

// User is the profile document. Password is only read on registration and is
// never written to the document store or serialized out.
type User struct {
	FirstName string `db:"first_name" json:"firstName" firestore:"firstName"`
	LastName  string `db:"last_name" json:"lastName" firestore:"lastName"`
	Email     string `db:"email" json:"email" firestore:"email"`
	Phone     string `db:"phone" json:"phone" firestore:"phone"`
	Password  string `db:"-" json:"-" firestore:"-"`
	Image     string `db:"image" json:"image" firestore:"image"`
	Address   string `db:"address" json:"address" firestore:"address"`
}

// ProfilePatch lists the fields a profile edit may overwrite.
type ProfilePatch struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

func (u User) Patch() ProfilePatch {
	return ProfilePatch{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Address:   u.Address,
	}
}

// CartLine is one product variant in a cart or a wishlist. The product id is
// the line id: adding the same product again replaces the line.
type CartLine struct {
	ProductID    string `db:"product_id" json:"productId" firestore:"productId"`
	ProductName  string `db:"product_name" json:"productName" firestore:"productName"`
	ProductImage string `db:"product_image" json:"productImage" firestore:"productImage"`
	Category     string `db:"category" json:"category" firestore:"category"`
	Size         string `db:"size" json:"size" firestore:"size"`
	Color        string `db:"color" json:"color" firestore:"color"`
	Quantity     string `db:"quantity" json:"quantity" firestore:"quantity"`
	TotalPrice   string `db:"total_price" json:"totalPrice" firestore:"totalPrice"`
}

type ShippingInfo struct {
	FirstName string `json:"firstName" firestore:"firstName"`
	LastName  string `json:"lastName" firestore:"lastName"`
	Phone     string `json:"phone" firestore:"phone"`
	Address   string `json:"address" firestore:"address"`
	City      string `json:"city" firestore:"city"`
	PinCode   string `json:"pinCode" firestore:"pinCode"`
	Country   string `json:"country" firestore:"country"`
}

type Order struct {
	OrderID      string       `json:"orderId" firestore:"orderId"`
	Time         int64        `json:"time" firestore:"time"` // unix millis
	Products     []CartLine   `json:"products" firestore:"products"`
	TotalPrice   int64        `json:"totalPrice" firestore:"totalPrice"`
	ShippingInfo ShippingInfo `json:"shippingInfo" firestore:"shippingInfo"`
}

// Identity is the authenticated account a user-scoped call acts for.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email,omitempty"`
}

func (id Identity) Anonymous() bool { return id.UID == "" }

// Session is what a successful sign-in hands back to the caller.
type Session struct {
	Token    string   `json:"token"`
	Identity Identity `json:"identity"`
}
