package seed

import "deskshop/internal/models"

// SampleProducts is the catalog inserted into an empty product collection.
func SampleProducts() []models.Product {
	return []models.Product{
		models.NewProduct(
			"Retro Gamer Setup",
			"Pink CRT monitor, mechanical keyboard, RGB mouse, and neon desk mat.",
			699.0, "gaming",
			"https://images.unsplash.com/photo-1603484477859-abe6a73f9360?q=80&w=1400&auto=format&fit=crop",
		),
		models.NewProduct(
			"Deep Work Productivity",
			"Dual 27\" IPS monitors, ergonomic chair, and silent peripherals.",
			1199.0, "productivity",
			"https://images.unsplash.com/photo-1559163499-413811fb2344?q=80&w=1400&auto=format&fit=crop",
		),
		models.NewProduct(
			"Creator Studio",
			"Ultra-wide 34\" display, studio speakers, and adjustable boom arm.",
			1899.0, "creator",
			"https://images.unsplash.com/photo-1518779578993-ec3579fee39f?q=80&w=1400&auto=format&fit=crop",
		),
		models.NewProduct(
			"Minimal Zen Desk",
			"Clean aluminum monitor stand, wireless keyboard, and warm lighting.",
			899.0, "minimal",
			"https://images.unsplash.com/photo-1519389950473-47ba0277781c?q=80&w=1400&auto=format&fit=crop",
		),
		models.NewProduct(
			"Streamer Pro Rig",
			"High FPS monitor, condenser mic, key light, and capture card.",
			1599.0, "streaming",
			"https://images.unsplash.com/photo-1498050108023-c5249f4df085?q=80&w=1400&auto=format&fit=crop",
		),
	}
}
