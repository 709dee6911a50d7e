package catalog

// tables and rows are initialized once and never mutated. Every exported
// accessor hands out copies.
var tables = []TableDescriptor{
	{
		Name: "使用者",
		Columns: []ColumnDescriptor{
			{Name: "ID", DataType: TypeNumber},
			{Name: "姓名", DataType: TypeString},
			{Name: "電子郵件", DataType: TypeString},
			{Name: "年齡", DataType: TypeNumber},
			{Name: "註冊日期", DataType: TypeDate},
		},
	},
	{
		Name: "產品",
		Columns: []ColumnDescriptor{
			{Name: "ID", DataType: TypeNumber},
			{Name: "名稱", DataType: TypeString},
			{Name: "價格", DataType: TypeNumber},
			{Name: "類別", DataType: TypeEnum},
			{Name: "庫存", DataType: TypeNumber},
		},
	},
}

var rows = map[string][]Row{
	"使用者": {
		{"ID": 1, "姓名": "愛麗絲", "電子郵件": "alice@example.com", "年齡": 30, "註冊日期": "2023-01-01"},
		{"ID": 2, "姓名": "鮑伯", "電子郵件": "bob@example.com", "年齡": 24, "註冊日期": "2023-02-15"},
		{"ID": 3, "姓名": "查理", "電子郵件": "charlie@example.com", "年齡": 35, "註冊日期": "2023-03-20"},
		{"ID": 4, "姓名": "大衛", "電子郵件": "david@example.com", "年齡": 28, "註冊日期": "2023-04-10"},
		{"ID": 5, "姓名": "伊芙", "電子郵件": "eve@example.com", "年齡": 22, "註冊日期": "2023-05-05"},
	},
	"產品": {
		{"ID": 101, "名稱": "筆記型電腦", "價格": 35000, "類別": "電子產品", "庫存": 50},
		{"ID": 102, "名稱": "滑鼠", "價格": 800, "類別": "電子產品", "庫存": 200},
		{"ID": 103, "名稱": "鍵盤", "價格": 2500, "類別": "電子產品", "庫存": 100},
		{"ID": 104, "名稱": "辦公椅", "價格": 4500, "類別": "家具", "庫存": 30},
		{"ID": 105, "名稱": "螢幕", "價格": 9000, "類別": "電子產品", "庫存": 75},
	},
}
