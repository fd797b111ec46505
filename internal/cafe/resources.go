package cafe

import "github.com/go-chi/chi/v5"

type mounter interface {
	Mount(s *Server, r chi.Router)
}

var (
	Roles = Resource[RolInput]{
		Path: "/rol",
		Table: Table{
			Name:    "rol",
			Key:     "id_rol",
			Columns: []string{"nombre"},
			Output:  []string{"id_rol", "nombre"},
		},
		Messages: Messages{
			Create:   "Ocurrió un error al crear el rol",
			Update:   "Ocurrió un error al actualizar el rol",
			Delete:   "Ocurrió un error al eliminar el rol",
			NotFound: "Rol no encontrado",
		},
	}

	Staff = Resource[PersonalInput]{
		Path: "/personal",
		Table: Table{
			Name: "personal",
			Key:  "id_personal",
			Columns: []string{
				"id_rol", "nombres", "primer_apellido", "segundo_apellido", "telefono",
				"fecha_nacimiento", "fecha_contratacion", "activo",
			},
			Output: []string{
				"id_personal", "id_rol", "nombres", "primer_apellido", "segundo_apellido", "telefono",
				"fecha_nacimiento", "fecha_contratacion", "activo",
			},
		},
		Messages: Messages{
			Create:   "Ocurrió un error al crear el personal",
			Update:   "Ocurrió un error al actualizar el personal",
			Delete:   "Ocurrió un error al eliminar el personal",
			NotFound: "Personal no encontrado",
		},
	}

	// Users reactivates the account on every update: activo is not part of
	// the request body and is always written as true.
	Users = Resource[UsuarioInput]{
		Path: "/usuario",
		Table: Table{
			Name:         "usuario",
			Key:          "id_usuario",
			Columns:      []string{"id_personal", "username", "email", "password_hash"},
			Output:       []string{"id_usuario", "id_personal", "username", "email", "password_hash", "activo"},
			UpdateForced: []Assignment{{Column: "activo", Value: true}},
		},
		Messages: Messages{
			Create:   "Ocurrió un error al crear el usuario",
			Update:   "Ocurrió un error al actualizar el usuario",
			Delete:   "Ocurrió un error al eliminar el usuario",
			NotFound: "Usuario no encontrado",
		},
	}

	Supplies = Resource[InsumoInput]{
		Path: "/insumo",
		Table: Table{
			Name:    "insumo",
			Key:     "id_insumo",
			Columns: []string{"nombre", "categoria", "unidad_medida", "stock_minimo", "activo"},
			Output:  []string{"id_insumo", "nombre", "categoria", "unidad_medida", "stock_minimo", "activo"},
		},
		Messages: Messages{
			Create:   "Ocurrió un error al crear el insumo",
			Update:   "Ocurrió un error al actualizar el insumo",
			Delete:   "Ocurrió un error al eliminar el insumo",
			NotFound: "Insumo no encontrado",
		},
	}

	Products = Resource[ProductoInput]{
		Path: "/producto",
		Table: Table{
			Name:    "producto",
			Key:     "id_producto",
			Columns: []string{"nombre", "descripcion", "unidad_medida", "precio_venta", "activo"},
			Output:  []string{"id_producto", "nombre", "descripcion", "unidad_medida", "precio_venta", "activo"},
		},
		Messages: Messages{
			Create:   "Ocurrió un error al crear el producto",
			Update:   "Ocurrió un error al actualizar el producto",
			Delete:   "Ocurrió un error al eliminar el producto",
			NotFound: "Producto no encontrado",
		},
	}

	ProductSupplies = Resource[ProductoInsumoInput]{
		Path: "/producto_insumo",
		Table: Table{
			Name:    "producto_insumo",
			Key:     "id_producto_insumo",
			Columns: []string{"id_producto", "id_insumo", "cantidad"},
			Output:  []string{"id_producto_insumo", "id_producto", "id_insumo", "cantidad"},
		},
		Messages: Messages{
			Create:   "Ocurrió un error al crear el producto_insumo",
			Update:   "Ocurrió un error al actualizar el producto_insumo",
			Delete:   "Ocurrió un error al eliminar el producto_insumo",
			NotFound: "ProductoInsumo no encontrado",
		},
	}

	Suppliers = Resource[ProveedorInput]{
		Path: "/proveedor",
		Table: Table{
			Name:    "proveedor",
			Key:     "id_proveedor",
			Columns: []string{"nombre", "contacto", "telefono", "email", "direccion", "activo"},
			Output:  []string{"id_proveedor", "nombre", "contacto", "telefono", "email", "direccion", "activo"},
		},
		Messages: Messages{
			Create:   "Ocurrió un error al crear el proveedor",
			Update:   "Ocurrió un error al actualizar el proveedor",
			Delete:   "Ocurrió un error al eliminar el proveedor",
			NotFound: "Proveedor no encontrado",
		},
	}

	Purchases = Resource[CompraInput]{
		Path: "/compra",
		Table: Table{
			Name:    "compra",
			Key:     "id_compra",
			Columns: []string{"id_proveedor", "id_usuario", "total", "estado"},
			Output:  []string{"id_compra", "id_proveedor", "id_usuario", "fecha", "total", "estado"},
		},
		Messages: Messages{
			Create:   "Ocurrió un error al crear la compra",
			Update:   "Ocurrió un error al actualizar la compra",
			Delete:   "Ocurrió un error al eliminar la compra",
			NotFound: "Compra no encontrada",
		},
	}

	PurchaseLines = Resource[DetalleCompraInput]{
		Path: "/detalle_compra",
		Table: Table{
			Name: "detalle_compra",
			Key:  "id_detalle_compra",
			Columns: []string{
				"id_compra", "id_insumo", "cantidad", "cantidad_disponible", "costo_unitario", "fecha_vencimiento",
			},
			Output: []string{
				"id_detalle_compra", "id_compra", "id_insumo", "cantidad", "cantidad_disponible",
				"costo_unitario", "fecha_vencimiento",
			},
		},
		Messages: Messages{
			Create:   "Ocurrió un error al crear el detalle de compra",
			Update:   "Ocurrió un error al actualizar el detalle de compra",
			Delete:   "Ocurrió un error al eliminar el detalle de compra",
			NotFound: "Detalle de compra no encontrado",
		},
	}

	Sales = Resource[VentaInput]{
		Path: "/venta",
		Table: Table{
			Name:    "venta",
			Key:     "id_venta",
			Columns: []string{"id_usuario", "estado"},
			Output:  []string{"id_venta", "id_usuario", "fecha", "estado"},
		},
		Messages: Messages{
			Create:   "Ocurrió un error al crear la venta",
			Update:   "Ocurrió un error al actualizar la venta",
			Delete:   "Ocurrió un error al eliminar la venta",
			NotFound: "Venta no encontrada",
		},
	}
)

// resources lists every resource in mount order.
var resources = []mounter{
	Roles, Staff, Users, Supplies, Products, ProductSupplies, Suppliers, Purchases, PurchaseLines, Sales,
}
