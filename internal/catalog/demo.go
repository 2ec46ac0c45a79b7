package catalog

// DemoItems is the built-in catalog used by the standalone CLI.
func DemoItems() []Item {
	return []Item{
		{
			ID: "srm-cerave-01", Name: "CeraVe Foaming Facial Cleanser 236ml",
			Brand: "CeraVe", Category: "sữa rửa mặt", Price: 350000,
			SkinTypes: []string{"da dầu", "da hỗn hợp"},
			Concerns:  []string{"mụn", "lỗ chân lông to"},
			Available: true,
		},
		{
			ID: "srm-cerave-02", Name: "CeraVe Hydrating Cleanser 236ml",
			Brand: "CeraVe", Category: "sữa rửa mặt", Price: 355000,
			SkinTypes: []string{"da khô", "da nhạy cảm"},
			Concerns:  []string{"khô căng"},
			Available: true,
		},
		{
			ID: "srm-lrp-01", Name: "La Roche-Posay Effaclar Purifying Gel 200ml",
			Brand: "La Roche-Posay", Category: "sữa rửa mặt", Price: 420000,
			SkinTypes: []string{"da dầu"},
			Concerns:  []string{"mụn"},
			Available: true,
		},
		{
			ID: "kcn-lrp-01", Name: "La Roche-Posay Anthelios UVMune 400 SPF50+ 50ml",
			Brand: "La Roche-Posay", Category: "kem chống nắng", Price: 495000,
			SkinTypes: []string{"da dầu", "da hỗn hợp", "da khô"},
			Available: true,
		},
		{
			ID: "kcn-anessa-01", Name: "Anessa Perfect UV Sunscreen Skincare Milk SPF50+ 60ml",
			Brand: "Anessa", Category: "kem chống nắng", Price: 650000,
			SkinTypes: []string{"da dầu", "da hỗn hợp"},
			Available: true,
		},
		{
			ID: "serum-ordinary-01", Name: "The Ordinary Niacinamide 10% + Zinc 1% 30ml",
			Brand: "The Ordinary", Category: "serum", Price: 290000,
			SkinTypes: []string{"da dầu", "da hỗn hợp"},
			Concerns:  []string{"mụn", "thâm", "lỗ chân lông to"},
			Available: true,
		},
		{
			ID: "serum-klairs-01", Name: "Klairs Freshly Juiced Vitamin C Drop 35ml",
			Brand: "Klairs", Category: "serum", Price: 380000,
			SkinTypes: []string{"da khô", "da nhạy cảm"},
			Concerns:  []string{"thâm", "xỉn màu"},
			Available: false,
		},
		{
			ID: "duong-cerave-01", Name: "CeraVe Moisturising Lotion 236ml",
			Brand: "CeraVe", Category: "kem dưỡng", Price: 330000,
			SkinTypes: []string{"da khô", "da nhạy cảm"},
			Concerns:  []string{"khô căng"},
			Available: true,
		},
		{
			ID: "duong-neutrogena-01", Name: "Neutrogena Hydro Boost Water Gel 50g",
			Brand: "Neutrogena", Category: "kem dưỡng", Price: 310000,
			SkinTypes: []string{"da dầu", "da hỗn hợp"},
			Available: true,
		},
		{
			ID: "toner-thayers-01", Name: "Thayers Witch Hazel Toner Rose Petal 355ml",
			Brand: "Thayers", Category: "toner", Price: 270000,
			SkinTypes: []string{"da dầu", "da hỗn hợp", "da nhạy cảm"},
			Concerns:  []string{"lỗ chân lông to"},
			Available: true,
		},
	}
}
