package common

// TokenTypeBearer is the token type reported alongside issued session tokens.
const TokenTypeBearer = "Bearer"
