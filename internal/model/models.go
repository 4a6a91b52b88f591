package model

// All lists every table the service migrates on startup.
func All() []interface{} {
	return []interface{}{
		&Powder{},
		&StockTransaction{},
		&GasUsage{},
		&Task{},
		&StatusCheck{},
	}
}
