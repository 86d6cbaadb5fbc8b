package common

const TOKEN_LEDGER_VERSION = "0.2.0"

const LEDGER_DB_VERSION = "1.0.0"
const LEDGER_DB_VERSION_KEY = "dbver"
