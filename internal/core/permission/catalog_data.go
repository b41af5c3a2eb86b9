package permission

const (
	ModuleDashboard    = "dashboard"
	ModulePurchases    = "purchases"
	ModuleSuppliers    = "suppliers"
	ModuleRawMaterials = "raw_materials"
	ModuleSales        = "sales"
	ModuleCustomers    = "customers"
	ModuleProducts     = "products"
	ModuleInventory    = "inventory"
	ModuleReports      = "reports"
	ModuleUsers        = "users"
	ModuleRoles        = "roles"
	ModuleSettings     = "settings"
)

const (
	SectionAdministration = "administration"
	PageRoles             = "roles"
)

// SystemModules is the flat module list. Every call returns a fresh slice.
func SystemModules() []Module {
	return []Module{
		{ID: "1", Name: ModuleDashboard, DisplayName: "لوحة التحكم", Description: "الملخص العام ومؤشرات الأداء", Category: "general", Active: true},
		{ID: "2", Name: ModulePurchases, DisplayName: "المشتريات", Description: "أوامر الشراء ومرتجعاتها", Category: "purchasing", Active: true},
		{ID: "3", Name: ModuleSuppliers, DisplayName: "الموردين", Description: "بيانات الموردين وحساباتهم", Category: "purchasing", Active: true},
		{ID: "4", Name: ModuleRawMaterials, DisplayName: "المواد الخام", Description: "أصناف المواد الخام ووحداتها", Category: "purchasing", Active: true},
		{ID: "5", Name: ModuleSales, DisplayName: "المبيعات", Description: "فواتير البيع", Category: "sales", Active: true},
		{ID: "6", Name: ModuleCustomers, DisplayName: "العملاء", Description: "بيانات العملاء", Category: "sales", Active: true},
		{ID: "7", Name: ModuleProducts, DisplayName: "المنتجات", Description: "المنتجات التامة وأسعارها", Category: "sales", Active: true},
		{ID: "8", Name: ModuleInventory, DisplayName: "المخزون", Description: "أرصدة المخازن والحركات", Category: "inventory", Active: true},
		{ID: "9", Name: ModuleReports, DisplayName: "التقارير", Description: "التقارير العامة", Category: "reports", Active: true},
		{ID: "10", Name: ModuleUsers, DisplayName: "المستخدمين", Description: "حسابات المستخدمين", Category: "administration", Active: true},
		{ID: "11", Name: ModuleRoles, DisplayName: "الأدوار والصلاحيات", Description: "إدارة الأدوار وصلاحياتها", Category: "administration", Active: true},
		{ID: "12", Name: ModuleSettings, DisplayName: "الإعدادات", Description: "إعدادات النظام", Category: "administration", Active: true},
	}
}

// SystemSections is the hierarchical catalog. The purchases module is
// reachable from two pages in different sections.
func SystemSections() []Section {
	return []Section{
		{
			ID: "dashboard", Name: "dashboard", DisplayName: "الرئيسية", Icon: "home", Active: true,
			Pages: []Page{
				{ID: "dashboard", Name: "dashboard", DisplayName: "لوحة التحكم", Module: ModuleDashboard, Href: "/dashboard", Icon: "layout-dashboard", Active: true},
			},
		},
		{
			ID: "purchasing", Name: "purchasing", DisplayName: "المشتريات", Icon: "shopping-cart", Active: true,
			Pages: []Page{
				{ID: "purchase-orders", Name: "purchase_orders", DisplayName: "أوامر الشراء", Module: ModulePurchases, Href: "/purchase-orders", Icon: "file-text", Active: true},
				{ID: "purchase-returns", Name: "purchase_returns", DisplayName: "مرتجعات المشتريات", Module: ModulePurchases, Href: "/purchase-returns", Icon: "undo", Active: true},
				{ID: "suppliers", Name: "suppliers", DisplayName: "الموردين", Module: ModuleSuppliers, Href: "/suppliers", Icon: "truck", Active: true},
				{ID: "raw-materials", Name: "raw_materials", DisplayName: "المواد الخام", Module: ModuleRawMaterials, Href: "/raw-materials", Icon: "package", Active: true},
			},
		},
		{
			ID: "sales", Name: "sales", DisplayName: "المبيعات", Icon: "receipt", Active: true,
			Pages: []Page{
				{ID: "sales-invoices", Name: "sales_invoices", DisplayName: "فواتير البيع", Module: ModuleSales, Href: "/sales", Icon: "receipt", Active: true},
				{ID: "customers", Name: "customers", DisplayName: "العملاء", Module: ModuleCustomers, Href: "/customers", Icon: "users", Active: true},
				{ID: "products", Name: "products", DisplayName: "المنتجات", Module: ModuleProducts, Href: "/products", Icon: "box", Active: true},
			},
		},
		{
			ID: "inventory", Name: "inventory", DisplayName: "المخازن", Icon: "warehouse", Active: true,
			Pages: []Page{
				{ID: "stock", Name: "stock", DisplayName: "أرصدة المخزون", Module: ModuleInventory, Href: "/inventory", Icon: "layers", Active: true},
			},
		},
		{
			ID: "reports", Name: "reports", DisplayName: "التقارير", Icon: "bar-chart", Active: true,
			Pages: []Page{
				{ID: "sales-reports", Name: "sales_reports", DisplayName: "تقارير المبيعات", Module: ModuleSales, Href: "/reports/sales", Icon: "trending-up", Active: true},
				{ID: "purchase-reports", Name: "purchase_reports", DisplayName: "تقارير المشتريات", Module: ModulePurchases, Href: "/reports/purchases", Icon: "trending-down", Active: true},
				{ID: "general-reports", Name: "general_reports", DisplayName: "التقارير العامة", Module: ModuleReports, Href: "/reports", Icon: "bar-chart", Active: true},
			},
		},
		{
			ID: SectionAdministration, Name: "administration", DisplayName: "الإدارة", Icon: "shield", Active: true,
			Pages: []Page{
				{ID: "users", Name: "users", DisplayName: "المستخدمين", Module: ModuleUsers, Href: "/users", Icon: "user", Active: true},
				{ID: PageRoles, Name: "roles", DisplayName: "الأدوار والصلاحيات", Module: ModuleRoles, Href: "/settings/roles", Icon: "shield-check", Active: true},
				{ID: "settings", Name: "settings", DisplayName: "الإعدادات", Module: ModuleSettings, Href: "/settings", Icon: "settings", Active: true},
			},
		},
	}
}
