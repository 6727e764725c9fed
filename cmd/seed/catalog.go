package main

// termDef is a taxonomy term to seed. Children are seeded with this term as
// their parent.
type termDef struct {
	name        string
	description string
	image       string
	children    []termDef
}

// productDef is a product post linked to one category and one brand.
type productDef struct {
	name     string
	category string
	brand    string
	status   string // post_status
	inStock  bool
}

// Category tree of a small beauty shop. Parents never show up in listings,
// only their leaves do.
var categories = []termDef{
	{name: "Pleťová kozmetika", children: []termDef{
		{name: "Séra", image: "https://cdn.example.com/cat/sera.jpg"},
		{name: "Krémy", image: "https://cdn.example.com/cat/kremy.jpg"},
		{name: "Čistenie pleti"},
	}},
	{name: "Vlasová kozmetika", children: []termDef{
		{name: "Šampóny", image: "https://cdn.example.com/cat/sampony.jpg"},
		{name: "Kondicionéry"},
	}},
	{name: "Telová starostlivosť", children: []termDef{
		{name: "Telové mlieka"},
		{name: "Sprchové gély"},
	}},
	{name: "Nezaradené"},
}

// Eleven brands, so the default page size of nine leaves a second page.
var brands = []termDef{
	{name: "La Roche-Posay", image: "https://cdn.example.com/brand/lrp.png",
		description: "Francúzska dermokozmetika vyvíjaná s dermatológmi pre citlivú pleť, ktorá potrebuje jemnú a zároveň účinnú starostlivosť každý deň v roku."},
	{name: "Bioderma", image: "https://cdn.example.com/brand/bioderma.png",
		description: "Biológia v službách dermatológie."},
	{name: "Vichy", description: "Minerálna termálna voda z Vichy je základom celej rady."},
	{name: "Avène", image: "https://cdn.example.com/brand/avene.png"},
	{name: "Nuxe", description: "<p>Prírodná <strong>francúzska</strong> kozmetika s ikonickým suchým olejom Huile Prodigieuse, ktorý si obľúbili ženy aj muži na celom svete.</p>"},
	{name: "CeraVe", image: "https://cdn.example.com/brand/cerave.png"},
	{name: "Eucerin"},
	{name: "Klorane", description: "Rastlinné extrakty pre vlasy."},
	{name: "Caudalie", image: "https://cdn.example.com/brand/caudalie.png"},
	{name: "Uriage"},
	{name: "SVR", description: "Laboratórium založené v roku 1962."},
	{name: "Ducray"},
}

var products = []productDef{
	{name: "Hyalu B5 sérum", category: "Séra", brand: "La Roche-Posay", status: "publish", inStock: true},
	{name: "Cicaplast Baume B5", category: "Krémy", brand: "La Roche-Posay", status: "publish", inStock: true},
	{name: "Sensibio H2O", category: "Čistenie pleti", brand: "Bioderma", status: "publish", inStock: true},
	{name: "Minéral 89", category: "Séra", brand: "Vichy", status: "publish", inStock: true},
	{name: "Cicalfate+", category: "Krémy", brand: "Avène", status: "publish", inStock: true},
	{name: "Huile Prodigieuse", category: "Telové mlieka", brand: "Nuxe", status: "publish", inStock: true},
	{name: "Hydratačné mlieko", category: "Telové mlieka", brand: "CeraVe", status: "publish", inStock: true},
	{name: "UreaRepair", category: "Telové mlieka", brand: "Eucerin", status: "publish", inStock: true},
	{name: "Šampón s ovsom", category: "Šampóny", brand: "Klorane", status: "publish", inStock: true},
	{name: "Vinoperfect", category: "Séra", brand: "Caudalie", status: "publish", inStock: true},
	{name: "Xémose", category: "Krémy", brand: "Uriage", status: "publish", inStock: true},
	{name: "Sebiaclear", category: "Čistenie pleti", brand: "SVR", status: "publish", inStock: true},
	// Never listed: out of stock, or not published.
	{name: "Anaphase+", category: "Kondicionéry", brand: "Ducray", status: "publish", inStock: false},
	{name: "Sprchový gél Lipikar", category: "Sprchové gély", brand: "La Roche-Posay", status: "draft", inStock: true},
	{name: "Testovací produkt", category: "Nezaradené", brand: "Bioderma", status: "publish", inStock: true},
}
