// Package domain defines the persistence models for users, locations, cafes,
// reviews, and favorites. These types are mapped with GORM and form the core
// data layer of the Nomad Cafes application.
package domain

import (
	"fmt"
	"time"
)

// User roles. Owners can manage their own cafe listings; admins have full
// access including moderation of reviews.
const (
	RoleUser  = "user"
	RoleOwner = "owner"
	RoleAdmin = "admin"
)

// Cafe categories.
const (
	CategoryCafe       = "cafe"
	CategoryCoworking  = "coworking"
	CategoryRestaurant = "restaurant"
	CategoryHotelCafe  = "hotel_cafe"
	CategoryLibrary    = "library"
	CategoryOther      = "other"
)

// Price levels (1 = budget ... 4 = premium).
const (
	PriceBudget    = 1
	PriceModerate  = 2
	PriceExpensive = 3
	PricePremium   = 4
)

// CategoryColors maps a cafe category to the hex color used for its badge.
// Single source of truth; resolved server-side so clients do not hardcode
// the palette.
var CategoryColors = map[string]string{
	CategoryCafe:       "#22C55E",
	CategoryCoworking:  "#3B82F6",
	CategoryRestaurant: "#EF4444",
	CategoryHotelCafe:  "#8B5CF6",
	CategoryLibrary:    "#F59E0B",
	CategoryOther:      "#6B7280",
}

// defaultCategoryColor is used when a category has no mapped color.
const defaultCategoryColor = "#6B7280"

// CategoryColor returns the badge color for a category, falling back to the
// neutral gray for unknown values.
func CategoryColor(category string) string {
	if c, ok := CategoryColors[category]; ok {
		return c
	}
	return defaultCategoryColor
}

// AllowedFeatures is the whitelist of feature values a cafe may carry. The
// first six are the "top" features exposed as list filters.
var AllowedFeatures = []string{
	"fast_wifi", "power_outlets", "quiet", "outdoor_seating", "pet_friendly", "open_late",
	"air_conditioning", "great_coffee", "food_available", "vegan_options",
	"meeting_friendly", "good_lighting", "accessible", "parking", "bike_parking",
	"smoke_free", "standing_desks", "accepts_cards", "reservations", "alcohol",
}

// TopFeatures is the subset of AllowedFeatures surfaced as primary filters.
var TopFeatures = AllowedFeatures[:6]

// ValidateFeatures checks that every entry is in the allowed set and returns
// an error naming the offending values otherwise.
func ValidateFeatures(features []string) error {
	allowed := make(map[string]struct{}, len(AllowedFeatures))
	for _, f := range AllowedFeatures {
		allowed[f] = struct{}{}
	}
	var invalid []string
	for _, f := range features {
		if _, ok := allowed[f]; !ok {
			invalid = append(invalid, f)
		}
	}
	if len(invalid) > 0 {
		return fmt.Errorf("invalid features: %v", invalid)
	}
	return nil
}

// User is an account identified by email. Passwords are stored as bcrypt
// hashes; the one-time tokens for email verification and password reset are
// stored as SHA256 hashes so a leaked database does not leak usable links.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Email: unique login identifier, lowercased before storage.
//   - Role: "user", "owner", or "admin".
//   - EmailVerifToken / PasswordResetToken: SHA256 hex of the plain token
//     mailed to the user; empty when no token is outstanding.
type User struct {
	ID           string `json:"id"    gorm:"type:char(36);primaryKey"`
	Email        string `json:"email" gorm:"type:varchar(254);not null;uniqueIndex"`
	PasswordHash string `json:"-"     gorm:"type:varchar(100);not null"`

	Name      string `json:"name"       gorm:"type:varchar(150)"`
	Bio       string `json:"bio"        gorm:"type:varchar(500)"`
	AvatarURL string `json:"avatar_url" gorm:"type:varchar(500)"`

	Role     string `json:"role"      gorm:"type:varchar(10);not null;default:'user';index"`
	IsActive bool   `json:"is_active" gorm:"not null;default:true"`

	IsEmailVerified  bool       `json:"is_email_verified" gorm:"not null;default:false"`
	EmailVerifToken  string     `json:"-"                 gorm:"type:char(64);index"`
	EmailVerifSentAt *time.Time `json:"-"`

	PasswordResetToken  string     `json:"-" gorm:"type:char(64);index"`
	PasswordResetSentAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// DisplayName returns the profile name, falling back to the email local part.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	for i := 0; i < len(u.Email); i++ {
		if u.Email[i] == '@' {
			return u.Email[:i]
		}
	}
	return u.Email
}

// Location is a city or region that cafes belong to. CafeCount is a
// denormalized count of active cafes, maintained with relative updates on
// every cafe write (see repo.AdjustCafeCount).
type Location struct {
	ID   string `json:"id"   gorm:"type:char(36);primaryKey"`
	Name string `json:"name" gorm:"type:varchar(100);not null"`
	Slug string `json:"slug" gorm:"type:varchar(100);not null;uniqueIndex"`

	Country     string `json:"country"      gorm:"type:varchar(100);index"`
	CountryCode string `json:"country_code" gorm:"type:char(2)"`
	Region      string `json:"region"       gorm:"type:varchar(100)"`
	Timezone    string `json:"timezone"     gorm:"type:varchar(50);not null;default:'UTC'"`

	ImageURL     string `json:"image_url"      gorm:"type:varchar(500)"`
	ThumbnailURL string `json:"thumbnail_url"  gorm:"type:varchar(500)"`
	HeroImageURL string `json:"hero_image_url" gorm:"type:varchar(500)"`

	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	// CafeCount equals the number of active cafes referencing this location.
	// Adjusted by += delta in the same transaction as the cafe write.
	CafeCount int64 `json:"cafe_count" gorm:"not null;default:0"`

	IsFeatured bool `json:"is_featured" gorm:"not null;default:false;index"`
	IsActive   bool `json:"is_active"   gorm:"not null;default:true;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Location.
func (Location) TableName() string { return "locations" }

// Cafe is the aggregate root for ratings. The five rating_* fields and
// RatingCount mirror the current set of active reviews; they are recomputed
// inside the transaction of every review write (see repo.RecomputeCafeRatings)
// so readers always observe a consistent summary.
//
// Deleting a cafe cascades to its reviews and favorites. The location
// reference is protected: a location with cafes cannot be removed.
type Cafe struct {
	ID   string `json:"id"   gorm:"type:char(36);primaryKey"`
	Name string `json:"name" gorm:"type:varchar(200);not null;index"`
	Slug string `json:"slug" gorm:"type:varchar(220);not null;uniqueIndex"`

	Description string `json:"description" gorm:"type:text"`
	Overview    string `json:"overview"    gorm:"type:varchar(500)"`

	LocationID string   `json:"location_id" gorm:"type:char(36);not null;index:idx_cafes_location_active,priority:1"`
	Location   Location `json:"-"           gorm:"foreignKey:LocationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`

	Address    string `json:"address"     gorm:"type:varchar(300)"`
	AddressTwo string `json:"address_2"   gorm:"type:varchar(200)"`
	PostalCode string `json:"postal_code" gorm:"type:varchar(20)"`
	City       string `json:"city"        gorm:"type:varchar(100);index"` // denormalized for filtering

	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	Phone   string `json:"phone"   gorm:"type:varchar(30)"`
	Email   string `json:"email"   gorm:"type:varchar(254)"`
	Website string `json:"website" gorm:"type:varchar(500)"`

	ImageURL     string `json:"image_url"     gorm:"type:varchar(500)"`
	ThumbnailURL string `json:"thumbnail_url" gorm:"type:varchar(500)"`
	LogoURL      string `json:"logo_url"      gorm:"type:varchar(500)"`
	Gallery      string `json:"gallery"       gorm:"type:text"` // JSON array of URLs

	Category      string `json:"category"       gorm:"type:varchar(20);not null;default:'cafe';index"`
	CategoryColor string `json:"category_color" gorm:"type:char(7);not null;default:'#6B7280'"`
	PriceLevel    int    `json:"price_level"    gorm:"not null;default:2;index"`

	Features     string `json:"features"      gorm:"type:text"` // JSON array, values from AllowedFeatures
	Amenities    string `json:"amenities"     gorm:"type:text"` // JSON object
	OpeningHours string `json:"opening_hours" gorm:"type:text"` // JSON object
	Timezone     string `json:"timezone"      gorm:"type:varchar(50)"`

	// Denormalized rating summary over active reviews. All zero when the
	// cafe has no active reviews. Dimension averages ignore reviews that
	// did not rate that dimension.
	RatingAvg    float64 `json:"rating_avg"    gorm:"type:decimal(3,2);not null;default:0;index"`
	RatingCount  int64   `json:"rating_count"  gorm:"not null;default:0"`
	RatingWifi   float64 `json:"rating_wifi"   gorm:"type:decimal(3,2);not null;default:0"`
	RatingPower  float64 `json:"rating_power"  gorm:"type:decimal(3,2);not null;default:0"`
	RatingNoise  float64 `json:"rating_noise"  gorm:"type:decimal(3,2);not null;default:0"`
	RatingCoffee float64 `json:"rating_coffee" gorm:"type:decimal(3,2);not null;default:0"`

	IsFeatured bool `json:"is_featured" gorm:"not null;default:false;index"`
	IsVerified bool `json:"is_verified" gorm:"not null;default:false"`
	IsActive   bool `json:"is_active"   gorm:"not null;default:true;index:idx_cafes_location_active,priority:2"`

	OwnerID   *string `json:"owner_id,omitempty" gorm:"type:char(36);index"`
	OwnerRole string  `json:"owner_role"         gorm:"type:varchar(100)"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Cafe.
func (Cafe) TableName() string { return "cafes" }

// Review is a user's rating of a cafe. Exactly one review per (cafe, user)
// pair, enforced by a unique index. RatingOverall is required (1-5); the four
// dimension ratings are independently optional. Soft-deleted reviews keep
// their row with IsActive=false and are excluded from aggregation and lists.
type Review struct {
	ID     string `json:"id"      gorm:"type:char(36);primaryKey"`
	CafeID string `json:"cafe_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_reviews_cafe_user"`
	UserID string `json:"user_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_reviews_cafe_user"`

	RatingOverall int  `json:"rating_overall" gorm:"not null;check:rating_overall BETWEEN 1 AND 5"`
	RatingWifi    *int `json:"rating_wifi,omitempty"`
	RatingPower   *int `json:"rating_power,omitempty"`
	RatingNoise   *int `json:"rating_noise,omitempty"` // higher = quieter
	RatingCoffee  *int `json:"rating_coffee,omitempty"`

	Text     string `json:"text"     gorm:"type:varchar(2000);not null"`
	Language string `json:"language" gorm:"type:varchar(5);not null;default:'en'"`
	Photos   string `json:"photos"   gorm:"type:text"` // JSON array of URLs

	IsActive   bool `json:"is_active"   gorm:"not null;default:true;index"`
	IsVerified bool `json:"is_verified" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	// Cafe is the rated cafe. Reviews are cascade-deleted with their cafe.
	Cafe Cafe `json:"-" gorm:"foreignKey:CafeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Review.
func (Review) TableName() string { return "reviews" }

// Favorite marks a cafe as saved by a user. At most one row per (user, cafe)
// pair, enforced by a unique index. No aggregation depends on favorites.
type Favorite struct {
	ID     string `json:"id"      gorm:"type:char(36);primaryKey"`
	UserID string `json:"user_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_favorites_user_cafe"`
	CafeID string `json:"cafe_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_favorites_user_cafe"`

	CreatedAt time.Time `json:"created_at"`

	Cafe Cafe `json:"cafe" gorm:"foreignKey:CafeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	User User `json:"-"    gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Favorite.
func (Favorite) TableName() string { return "favorites" }

// AuthAudit records authentication events (logins, refreshes, resets) for
// security monitoring. User is nullable so failed attempts against unknown
// emails can still be recorded.
type AuthAudit struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	EventType string    `json:"event_type" gorm:"type:varchar(30);not null;index"`
	UserID    *string   `json:"user_id,omitempty" gorm:"type:char(36);index"`
	Email     string    `json:"email"      gorm:"type:varchar(254)"`
	IPAddress string    `json:"ip_address" gorm:"type:varchar(45)"`
	UserAgent string    `json:"user_agent" gorm:"type:varchar(1000)"`
	Success   bool      `json:"success"    gorm:"not null;default:true"`
	Reason    string    `json:"reason"     gorm:"type:varchar(100)"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// TableName returns the database table name for AuthAudit.
func (AuthAudit) TableName() string { return "auth_audits" }

// Auth audit event types.
const (
	AuditLoginSuccess         = "login_success"
	AuditLoginFailure         = "login_failure"
	AuditLogout               = "logout"
	AuditRegister             = "register"
	AuditTokenRefresh         = "token_refresh"
	AuditTokenRefreshFailure  = "token_refresh_failure"
	AuditPasswordResetRequest = "password_reset_request"
	AuditPasswordResetConfirm = "password_reset_confirm"
	AuditPasswordChange       = "password_change"
	AuditEmailVerify          = "email_verify"
	AuditEmailVerifyResend    = "email_verify_resend"
)
